package exec

import (
	"github.com/notargets/cgbench/cgerr"
	"github.com/notargets/cgbench/csr"
	"github.com/notargets/cgbench/vec"
)

// Host implements the residency half of Space for backends that compute
// directly on host memory. Vectors are *vec.Vector and matrices *csr.Matrix.
type Host struct{}

// NewVector allocates a zeroed host vector.
func (Host) NewVector(label string, n int) (Vector, error) {
	v, err := vec.New(label, n)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// LoadVector returns an independent copy of v.
func (Host) LoadVector(v *vec.Vector) (Vector, error) {
	if v == nil {
		return nil, cgerr.NewInvalidArgError("LoadVector", "nil vector")
	}
	return v.Clone(v.Label()), nil
}

// LoadMatrix returns a unchanged; CSR matrices are immutable once built.
func (Host) LoadMatrix(a *csr.Matrix) (Matrix, error) {
	if a == nil {
		return nil, cgerr.NewInvalidArgError("LoadMatrix", "nil matrix")
	}
	return a, nil
}

// FreeVector checks that v is a host vector. The memory is left to the
// garbage collector.
func (Host) FreeVector(v Vector) error {
	_, err := hostData("FreeVector", v)
	return err
}

// FreeMatrix checks that a is a host matrix.
func (Host) FreeMatrix(a Matrix) error {
	if m, ok := a.(*csr.Matrix); !ok || m == nil {
		return cgerr.NewInvalidArgError("FreeMatrix", "matrix %T is not resident in a host space", a)
	}
	return nil
}

// Fence is a no-op: host launches complete before returning.
func (Host) Fence() error { return nil }

func hostData(op string, v Vector) ([]float64, error) {
	hv, ok := v.(*vec.Vector)
	if !ok || hv == nil {
		return nil, cgerr.NewInvalidArgError(op, "vector %T is not resident in a host space", v)
	}
	return hv.Data(), nil
}

// CheckAxpby validates the operand lengths of an AXPBY launch.
func CheckAxpby(op string, z, x, y Vector) error {
	if x.Len() != z.Len() {
		return cgerr.LengthMismatch(op+" x", z.Len(), x.Len())
	}
	if y.Len() != z.Len() {
		return cgerr.LengthMismatch(op+" y", z.Len(), y.Len())
	}
	return nil
}

// CheckDot validates the operand lengths of a DOT launch.
func CheckDot(op string, x, y Vector) error {
	if x.Len() != y.Len() {
		return cgerr.LengthMismatch(op, x.Len(), y.Len())
	}
	return nil
}

// CheckSPMV validates the operand shapes of an SPMV launch.
func CheckSPMV(op string, y Vector, a Matrix, x Vector) error {
	if x.Len() != a.Cols() {
		return cgerr.LengthMismatch(op+" x", a.Cols(), x.Len())
	}
	if y.Len() != a.Rows() {
		return cgerr.LengthMismatch(op+" y", a.Rows(), y.Len())
	}
	return nil
}

// HostAxpby validates an AXPBY launch and returns the host slices.
func HostAxpby(op string, z, x, y Vector) (zd, xd, yd []float64, err error) {
	if zd, err = hostData(op, z); err != nil {
		return nil, nil, nil, err
	}
	if xd, err = hostData(op, x); err != nil {
		return nil, nil, nil, err
	}
	if yd, err = hostData(op, y); err != nil {
		return nil, nil, nil, err
	}
	if err = CheckAxpby(op, z, x, y); err != nil {
		return nil, nil, nil, err
	}
	return zd, xd, yd, nil
}

// HostDot validates a DOT launch and returns the host slices.
func HostDot(op string, x, y Vector) (xd, yd []float64, err error) {
	if xd, err = hostData(op, x); err != nil {
		return nil, nil, err
	}
	if yd, err = hostData(op, y); err != nil {
		return nil, nil, err
	}
	if err = CheckDot(op, x, y); err != nil {
		return nil, nil, err
	}
	return xd, yd, nil
}

// HostSPMV validates an SPMV launch and returns the host operands.
func HostSPMV(op string, y Vector, a Matrix, x Vector) (yd []float64, m *csr.Matrix, xd []float64, err error) {
	m, ok := a.(*csr.Matrix)
	if !ok || m == nil {
		return nil, nil, nil, cgerr.NewInvalidArgError(op, "matrix %T is not resident in a host space", a)
	}
	if yd, err = hostData(op, y); err != nil {
		return nil, nil, nil, err
	}
	if xd, err = hostData(op, x); err != nil {
		return nil, nil, nil, err
	}
	if err = CheckSPMV(op, y, a, x); err != nil {
		return nil, nil, nil, err
	}
	return yd, m, xd, nil
}

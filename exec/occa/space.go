//go:build occa

package occa

import (
	"fmt"

	"github.com/notargets/cgbench/cgerr"
	"github.com/notargets/cgbench/csr"
	"github.com/notargets/cgbench/exec"
	gocca "github.com/notargets/cgbench/occa"
	"github.com/notargets/cgbench/vec"
)

func init() {
	exec.Register(Name, func(cfg exec.Config) (exec.Space, error) {
		return New(Config{Device: cfg.Device, BuildProps: cfg.BuildProps})
	})
}

// Vector is a vector resident in device memory.
type Vector struct {
	label string
	n     int
	mem   *gocca.OCCAMemory
	space *Space
}

func (v *Vector) Label() string { return v.label }

func (v *Vector) Len() int { return v.n }

// CopyToHost copies the device entries into dst.
func (v *Vector) CopyToHost(dst []float64) error {
	if len(dst) != v.n {
		return cgerr.LengthMismatch("occa.CopyToHost", v.n, len(dst))
	}
	return v.mem.CopyToFloat64(dst)
}

// Matrix is a CSR matrix mirrored in device memory.
type Matrix struct {
	rows, cols, nnz        int
	rowPtr, colIdx, values *gocca.OCCAMemory
	space                  *Space
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }
func (m *Matrix) NNZ() int  { return m.nnz }

// Space owns one OCCA device, the kernels built for it and every allocation
// made through it.
type Space struct {
	cfg     Config
	device  *gocca.OCCADevice
	kernels map[string]*gocca.OCCAKernel
	pooled  []*gocca.OCCAMemory

	partials    *gocca.OCCAMemory
	partialsLen int
	closed      bool
}

var _ exec.Space = (*Space)(nil)

// New creates the device and builds the kernels.
func New(cfg Config) (*Space, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	device, err := gocca.NewDevice(cfg.Device)
	if err != nil {
		return nil, err
	}

	s := &Space{
		cfg:     cfg,
		device:  device,
		kernels: make(map[string]*gocca.OCCAKernel),
	}
	var props *gocca.OCCAJson
	if cfg.BuildProps != "" {
		props = gocca.JsonParse(cfg.BuildProps)
		defer props.Free()
	}
	preamble := cfg.Preamble()
	for name, src := range Sources {
		kernel, err := device.BuildKernel(preamble+src, name, props)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
		}
		s.kernels[name] = kernel
	}
	return s, nil
}

func (s *Space) Name() string { return Name }

// Config returns the resolved settings.
func (s *Space) Config() Config { return s.cfg }

// Mode returns the OCCA device mode.
func (s *Space) Mode() string { return s.device.Mode() }

// malloc allocates at least one entry so empty vectors still own a handle.
func (s *Space) malloc(bytes int64) *gocca.OCCAMemory {
	if bytes < 8 {
		bytes = 8
	}
	mem := s.device.Malloc(bytes, nil)
	s.pooled = append(s.pooled, mem)
	return mem
}

// release frees mem and drops it from the pool.
func (s *Space) release(mem *gocca.OCCAMemory) {
	if mem == nil {
		return
	}
	for i, m := range s.pooled {
		if m == mem {
			s.pooled = append(s.pooled[:i], s.pooled[i+1:]...)
			break
		}
	}
	mem.Free()
}

// Allocations returns the number of live device allocations.
func (s *Space) Allocations() int { return len(s.pooled) }

func (s *Space) mallocInt64(data []int64) *gocca.OCCAMemory {
	if len(data) == 0 {
		return s.malloc(0)
	}
	mem := s.device.MallocInt64(data)
	s.pooled = append(s.pooled, mem)
	return mem
}

func (s *Space) NewVector(label string, n int) (exec.Vector, error) {
	if err := s.check("occa.NewVector"); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, cgerr.NewInvalidArgError("occa.NewVector", "negative length %d for %q", n, label)
	}
	v := &Vector{label: label, n: n, mem: s.malloc(int64(n) * 8), space: s}
	if n > 0 {
		if err := v.mem.CopyFromFloat64(make([]float64, n)); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (s *Space) LoadVector(hv *vec.Vector) (exec.Vector, error) {
	if hv == nil {
		return nil, cgerr.NewInvalidArgError("occa.LoadVector", "nil vector")
	}
	if err := s.check("occa.LoadVector"); err != nil {
		return nil, err
	}
	v := &Vector{label: hv.Label(), n: hv.Len(), mem: s.malloc(int64(hv.Len()) * 8), space: s}
	if err := v.mem.CopyFromFloat64(hv.Data()); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Space) LoadMatrix(a *csr.Matrix) (exec.Matrix, error) {
	if a == nil {
		return nil, cgerr.NewInvalidArgError("occa.LoadMatrix", "nil matrix")
	}
	if err := s.check("occa.LoadMatrix"); err != nil {
		return nil, err
	}
	m := &Matrix{
		rows:   a.Rows(),
		cols:   a.Cols(),
		nnz:    a.NNZ(),
		rowPtr: s.mallocInt64(a.RowPtr),
		colIdx: s.mallocInt64(a.ColIdx),
		values: s.malloc(int64(a.NNZ()) * 8),
		space:  s,
	}
	if err := m.values.CopyFromFloat64(a.Values); err != nil {
		return nil, err
	}
	return m, nil
}

// FreeVector releases the device memory behind v. Vectors of a closed space
// were already freed by Close.
func (s *Space) FreeVector(v exec.Vector) error {
	const op = "occa.FreeVector"
	dv, err := s.vector(op, v)
	if err != nil {
		return err
	}
	if s.closed || dv.mem == nil {
		return nil
	}
	s.release(dv.mem)
	dv.mem = nil
	return nil
}

// FreeMatrix releases the device arrays behind a.
func (s *Space) FreeMatrix(a exec.Matrix) error {
	m, ok := a.(*Matrix)
	if !ok || m == nil || m.space != s {
		return cgerr.NewInvalidArgError("occa.FreeMatrix", "matrix %T is not resident in this OCCA space", a)
	}
	if s.closed || m.values == nil {
		return nil
	}
	s.release(m.rowPtr)
	s.release(m.colIdx)
	s.release(m.values)
	m.rowPtr, m.colIdx, m.values = nil, nil, nil
	return nil
}

func (s *Space) check(op string) error {
	if s.closed {
		return cgerr.NewExecutionError(op, "space is closed", nil)
	}
	return nil
}

func (s *Space) vector(op string, v exec.Vector) (*Vector, error) {
	dv, ok := v.(*Vector)
	if !ok || dv == nil || dv.space != s {
		return nil, cgerr.NewInvalidArgError(op, "vector %T is not resident in this OCCA space", v)
	}
	return dv, nil
}

func (s *Space) run(op, kernel string, args ...interface{}) error {
	if err := s.kernels[kernel].RunWithArgs(args...); err != nil {
		return cgerr.NewExecutionError(op, "kernel launch failed", err)
	}
	s.device.Finish()
	return nil
}

func (s *Space) Axpby(z exec.Vector, alpha float64, x exec.Vector, beta float64, y exec.Vector) error {
	const op = "occa.Axpby"
	if err := s.check(op); err != nil {
		return err
	}
	dz, err := s.vector(op, z)
	if err != nil {
		return err
	}
	dx, err := s.vector(op, x)
	if err != nil {
		return err
	}
	dy, err := s.vector(op, y)
	if err != nil {
		return err
	}
	if err := exec.CheckAxpby(op, z, x, y); err != nil {
		return err
	}
	if dz.n == 0 {
		return nil
	}
	return s.run(op, "axpby", int64(dz.n), dz.mem, alpha, dx.mem, beta, dy.mem)
}

func (s *Space) Dot(x, y exec.Vector) (float64, error) {
	const op = "occa.Dot"
	if err := s.check(op); err != nil {
		return 0, err
	}
	dx, err := s.vector(op, x)
	if err != nil {
		return 0, err
	}
	dy, err := s.vector(op, y)
	if err != nil {
		return 0, err
	}
	if err := exec.CheckDot(op, x, y); err != nil {
		return 0, err
	}
	if dx.n == 0 {
		return 0, nil
	}

	groups := s.cfg.Groups(dx.n)
	if groups > s.partialsLen {
		s.release(s.partials)
		s.partials = s.malloc(int64(groups) * 8)
		s.partialsLen = groups
	}
	if err := s.run(op, "dot", int64(dx.n), dx.mem, dy.mem, s.partials); err != nil {
		return 0, err
	}
	partials := make([]float64, groups)
	if err := s.partials.CopyToFloat64(partials); err != nil {
		return 0, err
	}
	var result float64
	for _, p := range partials {
		result += p
	}
	return result, nil
}

func (s *Space) SPMV(y exec.Vector, a exec.Matrix, x exec.Vector) error {
	const op = "occa.SPMV"
	if err := s.check(op); err != nil {
		return err
	}
	m, ok := a.(*Matrix)
	if !ok || m == nil || m.space != s {
		return cgerr.NewInvalidArgError(op, "matrix %T is not resident in this OCCA space", a)
	}
	dy, err := s.vector(op, y)
	if err != nil {
		return err
	}
	dx, err := s.vector(op, x)
	if err != nil {
		return err
	}
	if err := exec.CheckSPMV(op, y, a, x); err != nil {
		return err
	}
	if m.rows == 0 {
		return nil
	}
	return s.run(op, "spmv", int64(m.rows), m.rowPtr, m.colIdx, m.values, dx.mem, dy.mem)
}

// Fence waits for the device queue to drain.
func (s *Space) Fence() error {
	if err := s.check("occa.Fence"); err != nil {
		return err
	}
	s.device.Finish()
	return nil
}

// Close frees every kernel and allocation, then the device.
func (s *Space) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	for _, kernel := range s.kernels {
		if kernel != nil {
			kernel.Free()
		}
	}
	for _, memory := range s.pooled {
		if memory != nil {
			memory.Free()
		}
	}
	s.kernels, s.pooled, s.partials = nil, nil, nil
	s.partialsLen = 0
	s.device.Free()
	return nil
}

// Package exectest holds the conformance suite every execution space runs
// from its own tests.
package exectest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/cgbench/cgerr"
	"github.com/notargets/cgbench/csr"
	"github.com/notargets/cgbench/csr/generate"
	"github.com/notargets/cgbench/exec"
	"github.com/notargets/cgbench/vec"
)

// DotLengths are the vector lengths the DOT check covers.
var DotLengths = []int{0, 1, 1024, 1_000_003}

// Opener returns a fresh space; the suite closes it.
type Opener func(t *testing.T) exec.Space

// RandomVector returns a labelled vector of n uniform values in [-1, 1).
func RandomVector(rng *rand.Rand, label string, n int) *vec.Vector {
	v := vec.Wrap(label, make([]float64, n))
	v.Init(func(int) float64 { return 2*rng.Float64() - 1 })
	return v
}

// Load copies v into s.
func Load(t *testing.T, s exec.Space, v *vec.Vector) exec.Vector {
	t.Helper()
	dv, err := s.LoadVector(v)
	require.NoError(t, err)
	return dv
}

// Host copies v out of its space.
func Host(t *testing.T, v exec.Vector) []float64 {
	t.Helper()
	out := make([]float64, v.Len())
	require.NoError(t, v.CopyToHost(out))
	return out
}

// Run executes the whole conformance suite against the spaces open returns.
func Run(t *testing.T, open Opener) {
	t.Run("Axpby", func(t *testing.T) { testAxpby(t, open) })
	t.Run("AxpbyAliasing", func(t *testing.T) { testAxpbyAliasing(t, open) })
	t.Run("Dot", func(t *testing.T) { testDot(t, open) })
	t.Run("SPMVIdentity", func(t *testing.T) { testSPMVIdentity(t, open) })
	t.Run("SPMVStencil", func(t *testing.T) { testSPMVStencil(t, open) })
	t.Run("LengthMismatch", func(t *testing.T) { testLengthMismatch(t, open) })
	t.Run("Free", func(t *testing.T) { testFree(t, open) })
}

func withSpace(t *testing.T, open Opener) exec.Space {
	t.Helper()
	s := open(t)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func axpbyRef(alpha float64, x []float64, beta float64, y []float64) []float64 {
	z := make([]float64, len(x))
	for i := range z {
		z[i] = alpha*x[i] + beta*y[i]
	}
	return z
}

func testAxpby(t *testing.T, open Opener) {
	s := withSpace(t, open)
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 17, 100_000} {
		x := RandomVector(rng, "x", n)
		y := RandomVector(rng, "y", n)
		alpha, beta := 2*rng.Float64()-1, 2*rng.Float64()-1
		want := axpbyRef(alpha, x.Data(), beta, y.Data())

		dz, err := s.NewVector("z", n)
		require.NoError(t, err)
		require.NoError(t, s.Axpby(dz, alpha, Load(t, s, x), beta, Load(t, s, y)))
		require.NoError(t, s.Fence())
		assert.InDeltaSlice(t, want, Host(t, dz), 1e-14, "n=%d", n)
	}
}

func testAxpbyAliasing(t *testing.T, open Opener) {
	s := withSpace(t, open)
	rng := rand.New(rand.NewSource(2))
	const n = 4099
	x := RandomVector(rng, "x", n)
	y := RandomVector(rng, "y", n)

	// z aliases x
	dx, dy := Load(t, s, x), Load(t, s, y)
	require.NoError(t, s.Axpby(dx, 1, dx, 0.5, dy))
	assert.InDeltaSlice(t, axpbyRef(1, x.Data(), 0.5, y.Data()), Host(t, dx), 1e-14)

	// z aliases y
	dx, dy = Load(t, s, x), Load(t, s, y)
	require.NoError(t, s.Axpby(dy, 1, dx, -0.25, dy))
	assert.InDeltaSlice(t, axpbyRef(1, x.Data(), -0.25, y.Data()), Host(t, dy), 1e-14)

	// z, x and y all alias: the copy-by-scale the solver issues on x.
	dx = Load(t, s, x)
	require.NoError(t, s.Axpby(dx, 1, dx, 0, dx))
	assert.InDeltaSlice(t, x.Data(), Host(t, dx), 0)

	// p = x with beta = 0
	dp, err := s.NewVector("p", n)
	require.NoError(t, err)
	dx = Load(t, s, x)
	require.NoError(t, s.Axpby(dp, 1, dx, 0, dx))
	assert.InDeltaSlice(t, x.Data(), Host(t, dp), 0)
}

func testDot(t *testing.T, open Opener) {
	s := withSpace(t, open)
	rng := rand.New(rand.NewSource(3))
	for _, n := range DotLengths {
		x := RandomVector(rng, "x", n)
		y := RandomVector(rng, "y", n)
		var want, scale float64
		for i := 0; i < n; i++ {
			want += x.At(i) * y.At(i)
			scale += math.Abs(x.At(i) * y.At(i))
		}
		got, err := s.Dot(Load(t, s, x), Load(t, s, y))
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12*math.Max(scale, 1), "n=%d", n)
	}
}

func testSPMVIdentity(t *testing.T, open Opener) {
	s := withSpace(t, open)
	rng := rand.New(rand.NewSource(4))
	const n = 2049
	id, err := csr.Identity(n)
	require.NoError(t, err)
	a, err := s.LoadMatrix(id)
	require.NoError(t, err)

	x := RandomVector(rng, "x", n)
	dy, err := s.NewVector("y", n)
	require.NoError(t, err)
	require.NoError(t, s.SPMV(dy, a, Load(t, s, x)))
	assert.Equal(t, x.Data(), Host(t, dy))
}

func testSPMVStencil(t *testing.T, open Opener) {
	s := withSpace(t, open)
	rng := rand.New(rand.NewSource(5))
	m, err := generate.Matrix(9)
	require.NoError(t, err)
	a, err := s.LoadMatrix(m)
	require.NoError(t, err)

	x := RandomVector(rng, "x", m.Cols())
	want := make([]float64, m.Rows())
	require.NoError(t, m.MulVec(want, x.Data()))

	dy, err := s.NewVector("y", m.Rows())
	require.NoError(t, err)
	require.NoError(t, s.SPMV(dy, a, Load(t, s, x)))
	assert.InDeltaSlice(t, want, Host(t, dy), 1e-12)
}

func testLengthMismatch(t *testing.T, open Opener) {
	s := withSpace(t, open)
	x, err := s.NewVector("x", 8)
	require.NoError(t, err)
	y, err := s.NewVector("y", 7)
	require.NoError(t, err)

	err = s.Axpby(x, 1, x, 1, y)
	assert.True(t, cgerr.IsInvalidArg(err), "axpby: %v", err)

	_, err = s.Dot(x, y)
	assert.True(t, cgerr.IsInvalidArg(err), "dot: %v", err)

	id, err := csr.Identity(8)
	require.NoError(t, err)
	a, err := s.LoadMatrix(id)
	require.NoError(t, err)
	err = s.SPMV(y, a, x)
	assert.True(t, cgerr.IsInvalidArg(err), "spmv: %v", err)
}

func testFree(t *testing.T, open Opener) {
	s := withSpace(t, open)
	id, err := csr.Identity(4)
	require.NoError(t, err)
	a, err := s.LoadMatrix(id)
	require.NoError(t, err)
	x := Load(t, s, vec.Wrap("x", []float64{1, 2, 3, 4}))
	z, err := s.NewVector("z", 4)
	require.NoError(t, err)

	assert.NoError(t, s.FreeVector(x))
	assert.NoError(t, s.FreeVector(z))
	assert.NoError(t, s.FreeMatrix(a))

	assert.True(t, cgerr.IsInvalidArg(s.FreeVector(foreign{})))
	assert.True(t, cgerr.IsInvalidArg(s.FreeMatrix(foreign{})))
}

// foreign is resident in no space.
type foreign struct{}

func (foreign) Label() string              { return "foreign" }
func (foreign) Len() int                   { return 0 }
func (foreign) CopyToHost([]float64) error { return nil }
func (foreign) Rows() int                  { return 0 }
func (foreign) Cols() int                  { return 0 }
func (foreign) NNZ() int                   { return 0 }

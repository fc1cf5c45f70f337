package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/cgbench/cgerr"
)

func TestMatrixShape(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		a, err := Matrix(n)
		require.NoError(t, err)
		rows := n * n * n
		assert.Equal(t, rows, a.Rows())
		assert.Equal(t, rows, a.Cols())

		// Each axis contributes 3 neighbours in the interior and 2 at a face.
		perAxis := 3*n - 2
		if n == 1 {
			perAxis = 1
		}
		assert.Equal(t, perAxis*perAxis*perAxis, a.NNZ(), "n=%d", n)

		for row := 0; row < rows; row++ {
			start, end := a.RowRange(row)
			for k := start + 1; k < end; k++ {
				assert.Less(t, a.ColIdx[k-1], a.ColIdx[k], "columns ascending in row %d", row)
			}
		}
	}
}

func TestMatrixIsSymmetric(t *testing.T) {
	a, err := Matrix(3)
	require.NoError(t, err)
	d := mat.DenseCopyOf(a)
	assert.True(t, mat.Equal(d, d.T()))
}

func TestMatrixIsPositiveDefinite(t *testing.T) {
	a, err := Matrix(3)
	require.NoError(t, err)
	r, _ := a.Dims()
	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, a.At(i, j))
		}
	}
	var chol mat.Cholesky
	assert.True(t, chol.Factorize(sym))
}

func TestVectorIsRowSum(t *testing.T) {
	n := 4
	a, err := Matrix(n)
	require.NoError(t, err)
	b, err := Vector(n)
	require.NoError(t, err)
	require.Equal(t, a.Rows(), b.Len())

	ones := make([]float64, a.Cols())
	for i := range ones {
		ones[i] = 1
	}
	want := make([]float64, a.Rows())
	require.NoError(t, a.MulVec(want, ones))
	assert.InDeltaSlice(t, want, b.Data(), 1e-12)

	// Interior point has all 26 neighbours.
	assert.Equal(t, 1.0, b.At(1+n*(1+n*1)))
	// Corner has 7.
	assert.Equal(t, 20.0, b.At(0))
}

func TestInvalidSize(t *testing.T) {
	_, err := Matrix(0)
	assert.True(t, cgerr.IsInvalidArg(err))
	_, err = Vector(-2)
	assert.True(t, cgerr.IsInvalidArg(err))
}

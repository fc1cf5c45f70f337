// Package csr holds the compressed-sparse-row matrix shared by every
// execution space. A Matrix is validated once at construction and treated
// as immutable afterwards.
package csr

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/cgbench/cgerr"
)

// Matrix is a CSR matrix. RowPtr has Rows()+1 entries, RowPtr[0] == 0 and
// RowPtr[Rows()] == NNZ(); ColIdx and Values are paired positionally.
type Matrix struct {
	RowPtr  []int64
	ColIdx  []int64
	Values  []float64
	NumCols int
}

var _ mat.Matrix = (*Matrix)(nil)

// New validates the three CSR arrays and wraps them without copying.
// The caller must not mutate the slices afterwards.
func New(rowPtr, colIdx []int64, values []float64, numCols int) (*Matrix, error) {
	const op = "csr.New"
	if len(rowPtr) == 0 {
		return nil, cgerr.NewInvalidArgError(op, "row_ptr must have at least one entry")
	}
	if numCols < 0 {
		return nil, cgerr.NewInvalidArgError(op, "negative column count %d", numCols)
	}
	if rowPtr[0] != 0 {
		return nil, cgerr.NewInvalidArgError(op, "row_ptr[0] = %d, want 0", rowPtr[0])
	}
	if len(colIdx) != len(values) {
		return nil, cgerr.NewInvalidArgError(op, "col_idx has %d entries, values has %d", len(colIdx), len(values))
	}
	rows := len(rowPtr) - 1
	if rowPtr[rows] != int64(len(colIdx)) {
		return nil, cgerr.NewInvalidArgError(op, "row_ptr[%d] = %d, want nnz %d", rows, rowPtr[rows], len(colIdx))
	}
	for i := 0; i < rows; i++ {
		if rowPtr[i+1] < rowPtr[i] {
			return nil, cgerr.NewInvalidArgError(op, "row_ptr decreases at row %d", i)
		}
	}
	for j, c := range colIdx {
		if c < 0 || c >= int64(numCols) {
			return nil, cgerr.NewInvalidArgError(op, "col_idx[%d] = %d out of range [0,%d)", j, c, numCols)
		}
	}
	return &Matrix{RowPtr: rowPtr, ColIdx: colIdx, Values: values, NumCols: numCols}, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*Matrix, error) {
	if n < 0 {
		return nil, cgerr.NewInvalidArgError("csr.Identity", "negative size %d", n)
	}
	rowPtr := make([]int64, n+1)
	colIdx := make([]int64, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		rowPtr[i+1] = int64(i + 1)
		colIdx[i] = int64(i)
		values[i] = 1
	}
	return New(rowPtr, colIdx, values, n)
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return len(m.RowPtr) - 1 }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.NumCols }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.Values) }

// RowRange returns the half-open range of row i in ColIdx/Values.
func (m *Matrix) RowRange(i int) (start, end int64) {
	return m.RowPtr[i], m.RowPtr[i+1]
}

// Dims returns the matrix dimensions.
func (m *Matrix) Dims() (r, c int) { return m.Rows(), m.NumCols }

// At returns the value at (i, j), summing duplicate entries.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.Rows() {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= m.NumCols {
		panic(mat.ErrColAccess)
	}
	var v float64
	for k := m.RowPtr[i]; k < m.RowPtr[i+1]; k++ {
		if m.ColIdx[k] == int64(j) {
			v += m.Values[k]
		}
	}
	return v
}

// T returns the implicit transpose.
func (m *Matrix) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// MulVec computes y = A·x sequentially. It is the host reference the
// execution spaces are checked against.
func (m *Matrix) MulVec(y, x []float64) error {
	if len(x) != m.NumCols {
		return cgerr.LengthMismatch("csr.MulVec x", m.NumCols, len(x))
	}
	if len(y) != m.Rows() {
		return cgerr.LengthMismatch("csr.MulVec y", m.Rows(), len(y))
	}
	for row := range y {
		var sum float64
		for k := m.RowPtr[row]; k < m.RowPtr[row+1]; k++ {
			sum += m.Values[k] * x[m.ColIdx[k]]
		}
		y[row] = sum
	}
	return nil
}

// ToSparse converts to a james-bowman/sparse CSR sharing no storage.
func (m *Matrix) ToSparse() *sparse.CSR {
	ia := make([]int, len(m.RowPtr))
	for i, v := range m.RowPtr {
		ia[i] = int(v)
	}
	ja := make([]int, len(m.ColIdx))
	for i, v := range m.ColIdx {
		ja[i] = int(v)
	}
	data := make([]float64, len(m.Values))
	copy(data, m.Values)
	return sparse.NewCSR(m.Rows(), m.NumCols, ia, ja, data)
}

// FromSparse builds a Matrix from any james-bowman/sparse CSR.
func FromSparse(s *sparse.CSR) (*Matrix, error) {
	rows, cols := s.Dims()
	rowPtr := make([]int64, rows+1)
	s.DoNonZero(func(i, j int, v float64) {
		rowPtr[i+1]++
	})
	for i := 0; i < rows; i++ {
		rowPtr[i+1] += rowPtr[i]
	}
	nnz := rowPtr[rows]
	colIdx := make([]int64, nnz)
	values := make([]float64, nnz)
	next := make([]int64, rows)
	copy(next, rowPtr[:rows])
	s.DoNonZero(func(i, j int, v float64) {
		k := next[i]
		colIdx[k] = int64(j)
		values[k] = v
		next[i]++
	})
	return New(rowPtr, colIdx, values, cols)
}

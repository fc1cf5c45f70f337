// Package generate builds the synthetic miniFE-style problem the CG
// benchmark solves: a 27-point stencil on an n×n×n structured grid.
package generate

import (
	"github.com/notargets/cgbench/cgerr"
	"github.com/notargets/cgbench/csr"
	"github.com/notargets/cgbench/vec"
)

const (
	// Diagonal is the stencil centre weight. It exceeds the number of
	// neighbours so every row is strictly diagonally dominant.
	Diagonal = 27.0
	// OffDiagonal is the weight of each of the up to 26 neighbours.
	OffDiagonal = -1.0
)

// Matrix returns the n³×n³ stencil matrix. Grid point (ix, iy, iz) maps to
// row ix + n*(iy + n*iz); column indices within a row are ascending.
// The matrix is symmetric positive definite.
func Matrix(n int) (*csr.Matrix, error) {
	if n <= 0 {
		return nil, cgerr.NewInvalidArgError("generate.Matrix", "problem size must be positive, got %d", n)
	}
	rows := n * n * n
	rowPtr := make([]int64, rows+1)
	colIdx := make([]int64, 0, rows*27)
	values := make([]float64, 0, rows*27)

	row := 0
	for iz := 0; iz < n; iz++ {
		for iy := 0; iy < n; iy++ {
			for ix := 0; ix < n; ix++ {
				for dz := -1; dz <= 1; dz++ {
					z := iz + dz
					if z < 0 || z >= n {
						continue
					}
					for dy := -1; dy <= 1; dy++ {
						y := iy + dy
						if y < 0 || y >= n {
							continue
						}
						for dx := -1; dx <= 1; dx++ {
							x := ix + dx
							if x < 0 || x >= n {
								continue
							}
							colIdx = append(colIdx, int64(x+n*(y+n*z)))
							if dx == 0 && dy == 0 && dz == 0 {
								values = append(values, Diagonal)
							} else {
								values = append(values, OffDiagonal)
							}
						}
					}
				}
				row++
				rowPtr[row] = int64(len(colIdx))
			}
		}
	}
	return csr.New(rowPtr, colIdx, values, rows)
}

// Vector returns the right-hand side b = A·1 for the size-n problem, so the
// exact solution is the vector of ones. Entry i is the row sum
// Diagonal + OffDiagonal·(neighbours of i).
func Vector(n int) (*vec.Vector, error) {
	if n <= 0 {
		return nil, cgerr.NewInvalidArgError("generate.Vector", "problem size must be positive, got %d", n)
	}
	b, err := vec.New("b", n*n*n)
	if err != nil {
		return nil, err
	}
	span := func(i int) int {
		s := 3
		if i == 0 {
			s--
		}
		if i == n-1 {
			s--
		}
		return s
	}
	b.Init(func(i int) float64 {
		ix := i % n
		iy := (i / n) % n
		iz := i / (n * n)
		neighbours := span(ix)*span(iy)*span(iz) - 1
		return Diagonal + OffDiagonal*float64(neighbours)
	})
	return b, nil
}

// Package exec defines the execution-space abstraction the CG driver and the
// benchmarks dispatch through. A Space owns the residency of vectors and
// matrices and launches the three kernels the solver needs: AXPBY, DOT and
// SPMV. Every launch blocks until the kernel has completed.
//
// Backends live in sub-packages and register themselves by name:
//
//	import _ "github.com/notargets/cgbench/exec/team"
//
//	space, err := exec.Open("team", exec.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer space.Close()
package exec

import (
	"github.com/notargets/cgbench/csr"
	"github.com/notargets/cgbench/vec"
)

// Vector is a dense vector resident in some Space.
type Vector interface {
	Label() string
	Len() int
	// CopyToHost copies the entries into dst, which must have Len() entries.
	CopyToHost(dst []float64) error
}

// Matrix is a CSR matrix resident in some Space.
type Matrix interface {
	Rows() int
	Cols() int
	NNZ() int
}

// Space is a kernel execution backend.
//
// Vectors and matrices passed to a Space must have been created or loaded by
// that same Space. A Space is driven by one goroutine at a time.
type Space interface {
	Name() string

	// NewVector allocates a zeroed vector of length n.
	NewVector(label string, n int) (Vector, error)
	// LoadVector copies a host vector into the space.
	LoadVector(v *vec.Vector) (Vector, error)
	// LoadMatrix makes a validated CSR matrix resident in the space.
	LoadMatrix(a *csr.Matrix) (Matrix, error)
	// FreeVector releases a vector created or loaded by this space. The
	// vector must not be used afterwards.
	FreeVector(v Vector) error
	// FreeMatrix releases a matrix loaded by this space.
	FreeMatrix(a Matrix) error

	// Axpby computes z = alpha*x + beta*y. z may alias x or y.
	Axpby(z Vector, alpha float64, x Vector, beta float64, y Vector) error
	// Dot returns the sum of x[i]*y[i].
	Dot(x, y Vector) (float64, error)
	// SPMV computes y = A*x.
	SPMV(y Vector, a Matrix, x Vector) error

	// Fence waits for outstanding work. Launches already block, so this
	// only matters for spaces with asynchronous queues.
	Fence() error
	// Close releases workers and device resources.
	Close() error
}

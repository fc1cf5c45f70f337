package cgbench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/cgbench/cg"
	"github.com/notargets/cgbench/cgerr"
	"github.com/notargets/cgbench/csr"
	"github.com/notargets/cgbench/csr/generate"
	"github.com/notargets/cgbench/exec"
	"github.com/notargets/cgbench/vec"
)

const gib = 1024 * 1024 * 1024

// CGSolve is one CG benchmark problem: the N³ stencil system generated once
// and solved on any number of execution spaces.
type CGSolve struct {
	N         int
	MaxIter   int
	Tolerance float64

	a      *csr.Matrix
	b      *vec.Vector
	logger *Logger
}

// NewCGSolve generates the N³ system.
func NewCGSolve(n, maxIter int, tol float64, opts ...Option) (*CGSolve, error) {
	if maxIter <= 0 {
		return nil, cgerr.NewInvalidArgError("cgbench.NewCGSolve", "max iterations must be positive, got %d", maxIter)
	}
	if math.IsNaN(tol) || tol < 0 {
		return nil, cgerr.NewInvalidArgError("cgbench.NewCGSolve", "tolerance must be non-negative, got %g", tol)
	}
	a, err := generate.Matrix(n)
	if err != nil {
		return nil, err
	}
	b, err := generate.Vector(n)
	if err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	o.logger.Debug("generated system", "n", n, "rows", a.Rows(), "nnz", a.NNZ())
	return &CGSolve{
		N:         n,
		MaxIter:   maxIter,
		Tolerance: tol,
		a:         a,
		b:         b,
		logger:    o.logger.WithSize(n),
	}, nil
}

// Matrix returns the generated system matrix.
func (c *CGSolve) Matrix() *csr.Matrix { return c.a }

// Report is the outcome of one CGSolve run.
type Report struct {
	Space string
	N     int

	Iterations      int
	Converged       bool
	Breakdown       bool
	InitialResidual float64
	Residual        float64
	// TrueResidual is ||b - A·x|| recomputed on the host.
	TrueResidual float64

	Seconds float64
	Calls   exec.Calls
	GFlops  float64
	GBs     float64
}

// Cost is the work one launch of each kernel performs on a system with the
// given rows and nonzeros.
type Cost struct {
	SPMVFlops, SPMVBytes   float64
	DotFlops, DotBytes     float64
	AxpbyFlops, AxpbyBytes float64
}

// KernelCost returns the per-launch flop and byte counts.
func KernelCost(rows, nnz int) Cost {
	r, z := float64(rows), float64(nnz)
	return Cost{
		// row_ptr + col_idx + values + x gathers + y
		SPMVFlops:  2 * z,
		SPMVBytes:  r*8 + z*8 + z*8 + z*8 + r*8,
		DotFlops:   2 * r,
		DotBytes:   2 * r * 8,
		AxpbyFlops: 3 * r,
		AxpbyBytes: 3 * r * 8,
	}
}

// Performance converts launch counts over seconds into GFlop/s and GiB/s.
func (c Cost) Performance(calls exec.Calls, seconds float64) (gflops, gbs float64) {
	if seconds <= 0 {
		return 0, 0
	}
	flops := c.SPMVFlops*float64(calls.SPMV) + c.DotFlops*float64(calls.Dot) + c.AxpbyFlops*float64(calls.Axpby)
	bytes := c.SPMVBytes*float64(calls.SPMV) + c.DotBytes*float64(calls.Dot) + c.AxpbyBytes*float64(calls.Axpby)
	return 1e-9 * flops / seconds, bytes / gib / seconds
}

// Run loads the system into space and solves it once. The load is not
// timed. A breakdown still produces a full report alongside the error.
func (c *CGSolve) Run(space exec.Space) (Report, error) {
	report := Report{Space: space.Name(), N: c.N}
	log := c.logger

	a, err := space.LoadMatrix(c.a)
	if err != nil {
		return report, err
	}
	defer space.FreeMatrix(a)
	b, err := space.LoadVector(c.b)
	if err != nil {
		return report, err
	}
	defer space.FreeVector(b)
	if err := space.Fence(); err != nil {
		return report, err
	}

	counter := exec.Count(space)
	start := time.Now()
	res, solveErr := cg.Solve(counter, a, b, cg.Options{
		MaxIter:   c.MaxIter,
		Tolerance: c.Tolerance,
		Logger:    log.Logger,
	})
	report.Seconds = time.Since(start).Seconds()
	if solveErr != nil && !errors.Is(solveErr, cg.ErrBreakdown) {
		log.LogSolve(context.Background(), report, solveErr)
		return report, solveErr
	}

	report.Iterations = res.Iterations
	report.Converged = res.Converged
	report.Breakdown = res.Breakdown
	report.InitialResidual = res.InitialResidual
	report.Residual = res.Residual
	report.Calls = counter.Calls()
	report.GFlops, report.GBs = KernelCost(c.a.Rows(), c.a.NNZ()).Performance(report.Calls, report.Seconds)

	ax := make([]float64, c.a.Rows())
	if err := c.a.MulVec(ax, res.Solution); err != nil {
		return report, err
	}
	floats.SubTo(ax, c.b.Data(), ax)
	report.TrueResidual = floats.Norm(ax, 2)

	log.LogSolve(context.Background(), report, solveErr)
	return report, solveErr
}

// Label is the upper-cased space name used to prefix report lines.
func (r Report) Label() string { return strings.ToUpper(r.Space) }

// Print writes the report in the benchmark's line format.
func (r Report) Print(w io.Writer) error {
	label := r.Label()
	_, err := fmt.Fprintf(w,
		"Initial Residual = %g\n"+
			"%s: CGSolve for 3D (%d %d %d); %d iterations; %f time\n"+
			"%s: Performance: %f GFlop/s %f GB/s (Calls SPMV: %d Dot: %d AXPBY: %d\n",
		r.InitialResidual,
		label, r.N, r.N, r.N, r.Iterations, r.Seconds,
		label, r.GFlops, r.GBs, r.Calls.SPMV, r.Calls.Dot, r.Calls.Axpby,
	)
	return err
}

// RunAll runs the problem on each space in turn, printing a banner and the
// report for each. A failing space does not stop the others; the errors are
// joined.
func (c *CGSolve) RunAll(w io.Writer, spaces ...exec.Space) error {
	var errs []error
	for _, space := range spaces {
		if _, err := fmt.Fprintf(w, "*******%s***************\n", space.Name()); err != nil {
			return err
		}
		report, err := c.Run(space)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", space.Name(), err))
			if !report.Breakdown {
				continue
			}
		}
		if perr := report.Print(w); perr != nil {
			return perr
		}
	}
	return errors.Join(errs...)
}

// Package cg implements the unpreconditioned conjugate-gradient solver over
// any exec.Space. The solver is written once against the three kernels
// (SPMV, DOT, AXPBY); the space decides how they are dispatched.
package cg

import (
	"errors"
	"log/slog"
	"math"

	"github.com/notargets/cgbench/cgerr"
	"github.com/notargets/cgbench/exec"
)

// ErrBreakdown is wrapped by the error Solve returns when p·Ap goes
// non-positive and the iteration cannot continue.
var ErrBreakdown = errors.New("cg: breakdown, p·Ap is not positive")

// machineEpsilon is the initial breakdown tolerance (2^-52).
const machineEpsilon = 0x1p-52

// Options controls a solve.
type Options struct {
	// MaxIter bounds the iteration count and must be positive.
	MaxIter int
	// Tolerance is the absolute residual norm at which the loop stops.
	Tolerance float64
	// Logger receives the initial residual, progress and breakdown
	// diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Result describes a finished solve.
type Result struct {
	// Iterations is the number of completed updates of x.
	Iterations int
	// Converged reports Residual <= Tolerance.
	Converged bool
	// Breakdown reports that p·Ap was not positive.
	Breakdown bool
	// InitialResidual is ||b - A·0||.
	InitialResidual float64
	// Residual is ||r|| recomputed after the loop.
	Residual float64
	// Solution is a host copy of x.
	Solution []float64
}

// PrintFreq returns the iteration cadence for progress logging:
// MaxIter/10 clamped to [1, 50].
func PrintFreq(maxIter int) int {
	f := maxIter / 10
	if f > 50 {
		f = 50
	}
	if f < 1 {
		f = 1
	}
	return f
}

func (o Options) validate(a exec.Matrix, b exec.Vector) error {
	const op = "cg.Solve"
	switch {
	case o.MaxIter <= 0:
		return cgerr.NewInvalidArgError(op, "max iterations must be positive, got %d", o.MaxIter)
	case math.IsNaN(o.Tolerance) || o.Tolerance < 0:
		return cgerr.NewInvalidArgError(op, "tolerance must be non-negative, got %g", o.Tolerance)
	case a == nil || b == nil:
		return cgerr.NewInvalidArgError(op, "nil matrix or right-hand side")
	case a.Rows() == 0:
		return cgerr.NewInvalidArgError(op, "empty system")
	case a.Rows() != a.Cols():
		return cgerr.NewInvalidArgError(op, "matrix is %dx%d, not square", a.Rows(), a.Cols())
	case b.Len() != a.Rows():
		return cgerr.LengthMismatch(op+" b", a.Rows(), b.Len())
	}
	return nil
}

// Solve runs CG on A·x = b starting from x = 0. b is not modified.
//
// On breakdown the partial Result is returned together with an error
// wrapping ErrBreakdown. Any kernel failure aborts the solve.
func Solve(space exec.Space, a exec.Matrix, b exec.Vector, opts Options) (Result, error) {
	if err := opts.validate(a, b); err != nil {
		return Result{}, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("space", space.Name())

	n := a.Rows()
	s := solver{space: space, a: a, b: b}
	defer s.free()
	if err := s.alloc(n); err != nil {
		return Result{}, err
	}

	res, err := s.iterate(opts, log)
	if err != nil && !errors.Is(err, ErrBreakdown) {
		return Result{}, err
	}

	rr, derr := space.Dot(s.r, s.r)
	if derr != nil {
		return Result{}, derr
	}
	res.Residual = math.Sqrt(rr)
	res.Converged = res.Residual <= opts.Tolerance
	res.Solution = make([]float64, n)
	if cerr := s.x.CopyToHost(res.Solution); cerr != nil {
		return Result{}, cerr
	}
	if ferr := space.Fence(); ferr != nil {
		return Result{}, ferr
	}
	log.Debug("cg finished",
		"iterations", res.Iterations,
		"residual", res.Residual,
		"converged", res.Converged,
	)
	return res, err
}

// solver holds the working vectors of one solve.
type solver struct {
	space exec.Space
	a     exec.Matrix
	b     exec.Vector

	x, r, p, ap exec.Vector
}

func (s *solver) alloc(n int) error {
	var err error
	if s.x, err = s.space.NewVector("x", n); err != nil {
		return err
	}
	if s.r, err = s.space.NewVector("r", n); err != nil {
		return err
	}
	if s.p, err = s.space.NewVector("p", n); err != nil {
		return err
	}
	s.ap, err = s.space.NewVector("Ap", n)
	return err
}

// free releases whichever working vectors were allocated.
func (s *solver) free() {
	for _, v := range []exec.Vector{s.x, s.r, s.p, s.ap} {
		if v != nil {
			s.space.FreeVector(v)
		}
	}
}

func (s *solver) iterate(opts Options, log *slog.Logger) (Result, error) {
	var res Result
	sp := s.space
	printFreq := PrintFreq(opts.MaxIter)

	// p = x; Ap = A*p; r = b - Ap
	if err := sp.Axpby(s.p, 1, s.x, 0, s.x); err != nil {
		return res, err
	}
	if err := sp.SPMV(s.ap, s.a, s.p); err != nil {
		return res, err
	}
	if err := sp.Axpby(s.r, 1, s.b, -1, s.ap); err != nil {
		return res, err
	}
	rtrans, err := sp.Dot(s.r, s.r)
	if err != nil {
		return res, err
	}
	normr := math.Sqrt(rtrans)
	res.InitialResidual = normr
	log.Info("initial residual", "normr", normr)

	brkdownTol := machineEpsilon
	for k := 1; k <= opts.MaxIter && normr > opts.Tolerance; k++ {
		if k == 1 {
			if err = sp.Axpby(s.p, 1, s.r, 0, s.r); err != nil {
				return res, err
			}
		} else {
			oldrtrans := rtrans
			if rtrans, err = sp.Dot(s.r, s.r); err != nil {
				return res, err
			}
			beta := rtrans / oldrtrans
			if err = sp.Axpby(s.p, 1, s.r, beta, s.p); err != nil {
				return res, err
			}
		}
		normr = math.Sqrt(rtrans)
		if rtrans == 0 {
			// r is exactly zero: x solves the system.
			log.Debug("cg exact solution", "iteration", k)
			break
		}
		if k%printFreq == 0 || k == opts.MaxIter {
			log.Debug("cg progress", "iteration", k, "normr", normr)
		}

		if err = sp.SPMV(s.ap, s.a, s.p); err != nil {
			return res, err
		}
		var pAp float64
		if pAp, err = sp.Dot(s.ap, s.p); err != nil {
			return res, err
		}
		if pAp < brkdownTol {
			if pAp <= 0 {
				res.Breakdown = true
				log.Error("cg breakdown",
					"iteration", k,
					"pAp", pAp,
					"normr", normr,
				)
				return res, cgerr.NewNumericalError("cg.Solve", "p·Ap is not positive", ErrBreakdown)
			}
			brkdownTol = 0.1 * pAp
		}

		alpha := rtrans / pAp
		if err = sp.Axpby(s.x, 1, s.x, alpha, s.p); err != nil {
			return res, err
		}
		if err = sp.Axpby(s.r, 1, s.r, -alpha, s.ap); err != nil {
			return res, err
		}
		res.Iterations = k
	}
	return res, nil
}

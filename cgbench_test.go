package cgbench_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/cgbench"
	"github.com/notargets/cgbench/cgerr"
	"github.com/notargets/cgbench/csr"
	"github.com/notargets/cgbench/exec"
	"github.com/notargets/cgbench/exec/direct"
	"github.com/notargets/cgbench/exec/serial"
	"github.com/notargets/cgbench/exec/team"
	"github.com/notargets/cgbench/vec"
)

func quiet() cgbench.Option { return cgbench.WithLogger(cgbench.NoopLogger()) }

func TestNewCGSolveInvalid(t *testing.T) {
	for name, tc := range map[string]struct {
		n, maxIter int
		tol        float64
	}{
		"zero size":     {0, 10, 1e-6},
		"zero max iter": {4, 0, 1e-6},
		"negative tol":  {4, 10, -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := cgbench.NewCGSolve(tc.n, tc.maxIter, tc.tol, quiet())
			assert.True(t, cgerr.IsInvalidArg(err), "%v", err)
		})
	}
}

func TestRunCountsLaunches(t *testing.T) {
	bench, err := cgbench.NewCGSolve(4, 50, 1e-8, quiet())
	require.NoError(t, err)
	assert.Equal(t, 64, bench.Matrix().Rows())

	report, err := bench.Run(serial.New())
	require.NoError(t, err)

	k := report.Iterations
	require.Positive(t, k)
	assert.True(t, report.Converged)
	assert.Equal(t, exec.Calls{SPMV: 1 + k, Dot: 2*k + 1, Axpby: 2 + 3*k}, report.Calls)
	assert.LessOrEqual(t, report.TrueResidual, 1e-7)
	assert.Positive(t, report.Seconds)
	assert.Positive(t, report.GFlops)
	assert.Positive(t, report.GBs)
	assert.Equal(t, "SERIAL", report.Label())
}

func TestRunSameIterationsAcrossSpaces(t *testing.T) {
	bench, err := cgbench.NewCGSolve(6, 100, 1e-10, quiet())
	require.NoError(t, err)

	tm, err := team.New(team.Config{Workers: 3})
	require.NoError(t, err)
	defer tm.Close()
	dr, err := direct.New(direct.Config{Workers: 3, RowsPerChunk: 32, ChunkSize: 64})
	require.NoError(t, err)

	var iters []int
	for _, s := range []exec.Space{serial.New(), tm, dr} {
		report, err := bench.Run(s)
		require.NoError(t, err, s.Name())
		iters = append(iters, report.Iterations)
	}
	assert.Equal(t, iters[0], iters[1])
	assert.Equal(t, iters[0], iters[2])
}

func TestKernelCost(t *testing.T) {
	c := cgbench.KernelCost(10, 30)
	assert.Equal(t, 60.0, c.SPMVFlops)
	assert.Equal(t, 880.0, c.SPMVBytes)
	assert.Equal(t, 20.0, c.DotFlops)
	assert.Equal(t, 160.0, c.DotBytes)
	assert.Equal(t, 30.0, c.AxpbyFlops)
	assert.Equal(t, 240.0, c.AxpbyBytes)

	gflops, gbs := c.Performance(exec.Calls{SPMV: 2, Dot: 1, Axpby: 1}, 0.5)
	assert.InDelta(t, 1e-9*(120+20+30)/0.5, gflops, 1e-18)
	assert.InDelta(t, (1760.0+160+240)/(1<<30)/0.5, gbs, 1e-18)

	gflops, gbs = c.Performance(exec.Calls{SPMV: 1}, 0)
	assert.Zero(t, gflops)
	assert.Zero(t, gbs)
}

func TestReportPrint(t *testing.T) {
	r := cgbench.Report{
		Space:           "team",
		N:               3,
		Iterations:      7,
		InitialResidual: 2.5,
		Seconds:         0.125,
		GFlops:          1.5,
		GBs:             2.25,
		Calls:           exec.Calls{SPMV: 8, Dot: 15, Axpby: 23},
	}
	var buf bytes.Buffer
	require.NoError(t, r.Print(&buf))
	assert.Equal(t,
		"Initial Residual = 2.5\n"+
			"TEAM: CGSolve for 3D (3 3 3); 7 iterations; 0.125000 time\n"+
			"TEAM: Performance: 1.500000 GFlop/s 2.250000 GB/s (Calls SPMV: 8 Dot: 15 AXPBY: 23\n",
		buf.String())
}

func TestRunAll(t *testing.T) {
	bench, err := cgbench.NewCGSolve(3, 20, 1e-8, quiet())
	require.NoError(t, err)
	dr, err := direct.New(direct.Config{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, bench.RunAll(&buf, serial.New(), dr))

	out := buf.String()
	serialAt := strings.Index(out, "*******serial***************\n")
	directAt := strings.Index(out, "*******direct***************\n")
	require.GreaterOrEqual(t, serialAt, 0)
	require.Greater(t, directAt, serialAt)
	assert.Contains(t, out[serialAt:directAt], "SERIAL: CGSolve for 3D (3 3 3);")
	assert.Contains(t, out[directAt:], "DIRECT: Performance:")
}

func TestRunAllReportsClosedSpace(t *testing.T) {
	bench, err := cgbench.NewCGSolve(3, 20, 1e-8, quiet())
	require.NoError(t, err)
	tm, err := team.New(team.Config{})
	require.NoError(t, err)
	require.NoError(t, tm.Close())

	var buf bytes.Buffer
	err = bench.RunAll(&buf, tm, serial.New())
	require.Error(t, err)
	assert.True(t, cgerr.IsExecution(err))
	assert.Contains(t, err.Error(), "team")
	assert.Contains(t, buf.String(), "SERIAL: CGSolve")
	assert.NotContains(t, buf.String(), "TEAM: CGSolve")
}

func TestLoggerOutput(t *testing.T) {
	var logs bytes.Buffer
	logger := cgbench.NewLogger(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	bench, err := cgbench.NewCGSolve(3, 20, 1e-8, cgbench.WithLogger(logger))
	require.NoError(t, err)

	_, err = bench.Run(serial.New())
	require.NoError(t, err)
	out := logs.String()
	assert.Contains(t, out, "initial residual")
	assert.Contains(t, out, "cg solve completed")
	assert.Contains(t, out, "space=serial")
	assert.Contains(t, out, "n=3")
	assert.NotContains(t, out, "cg progress", "progress is Debug level")
}

func TestDotBench(t *testing.T) {
	_, err := cgbench.NewDotBench(0)
	assert.True(t, cgerr.IsInvalidArg(err))

	const n = 100_000
	bench, err := cgbench.NewDotBench(n, quiet())
	require.NoError(t, err)

	dr, err := direct.New(direct.Config{ChunkSize: 4096})
	require.NoError(t, err)
	for _, s := range []exec.Space{serial.New(), dr} {
		report, err := bench.Run(s, 5)
		require.NoError(t, err)
		assert.Equal(t, 2.0*n, report.Result)
		assert.Equal(t, 5, report.Reps)
		assert.Positive(t, report.Seconds)
		assert.Positive(t, report.GiBs())

		var buf bytes.Buffer
		require.NoError(t, report.Print(&buf))
		assert.True(t, strings.HasPrefix(buf.String(), "DOT "+s.Name()+": "), buf.String())
		assert.True(t, strings.HasSuffix(buf.String(), " GiB/s\n"), buf.String())
	}

	_, err = bench.Run(serial.New(), 0)
	assert.True(t, cgerr.IsInvalidArg(err))
}

func TestDotReportBandwidth(t *testing.T) {
	r := cgbench.DotReport{N: 1 << 26, Reps: 4, Seconds: 2}
	assert.Equal(t, 2.0, r.GiBs())
	assert.Zero(t, cgbench.DotReport{N: 1, Reps: 1}.GiBs())
}

// resident counts the vectors and matrices a benchmark leaves in its space.
type resident struct {
	exec.Space
	vectors, matrices int
}

func (s *resident) NewVector(label string, n int) (exec.Vector, error) {
	s.vectors++
	return s.Space.NewVector(label, n)
}

func (s *resident) LoadVector(v *vec.Vector) (exec.Vector, error) {
	s.vectors++
	return s.Space.LoadVector(v)
}

func (s *resident) LoadMatrix(a *csr.Matrix) (exec.Matrix, error) {
	s.matrices++
	return s.Space.LoadMatrix(a)
}

func (s *resident) FreeVector(v exec.Vector) error {
	s.vectors--
	return s.Space.FreeVector(v)
}

func (s *resident) FreeMatrix(a exec.Matrix) error {
	s.matrices--
	return s.Space.FreeMatrix(a)
}

func TestRunReleasesResidentData(t *testing.T) {
	solve, err := cgbench.NewCGSolve(4, 50, 1e-8, quiet())
	require.NoError(t, err)
	dot, err := cgbench.NewDotBench(1000, quiet())
	require.NoError(t, err)

	s := &resident{Space: serial.New()}
	_, err = solve.Run(s)
	require.NoError(t, err)
	_, err = dot.Run(s, 2)
	require.NoError(t, err)
	assert.Zero(t, s.vectors)
	assert.Zero(t, s.matrices)
}

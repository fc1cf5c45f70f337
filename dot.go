package cgbench

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/notargets/cgbench/cgerr"
	"github.com/notargets/cgbench/exec"
	"github.com/notargets/cgbench/vec"
)

// DotBench times repeated DOT launches over x = 1, y = 2.
type DotBench struct {
	N int

	x, y   *vec.Vector
	logger *Logger
}

// NewDotBench allocates and fills the two host vectors of length n.
func NewDotBench(n int, opts ...Option) (*DotBench, error) {
	if n <= 0 {
		return nil, cgerr.NewInvalidArgError("cgbench.NewDotBench", "length must be positive, got %d", n)
	}
	x, err := vec.New("X", n)
	if err != nil {
		return nil, err
	}
	y, err := vec.New("Y", n)
	if err != nil {
		return nil, err
	}
	x.Fill(1)
	y.Fill(2)
	o := applyOptions(opts)
	return &DotBench{N: n, x: x, y: y, logger: o.logger}, nil
}

// DotReport is the outcome of one DotBench run.
type DotReport struct {
	Space   string
	N       int
	Reps    int
	Seconds float64
	// Result is the value of the last timed launch.
	Result float64
}

// GiBs returns the bandwidth: 2 vectors of N doubles read per launch.
func (r DotReport) GiBs() float64 {
	if r.Seconds <= 0 {
		return 0
	}
	bytes := 8 * float64(r.N) * 2 * float64(r.Reps)
	return bytes / gib / r.Seconds
}

// Print writes the report line.
func (r DotReport) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "DOT %s: %e s %e GiB/s\n", r.Space, r.Seconds, r.GiBs())
	return err
}

// Run loads the vectors into space, launches one untimed warm-up, then times
// reps launches.
func (d *DotBench) Run(space exec.Space, reps int) (DotReport, error) {
	report := DotReport{Space: space.Name(), N: d.N, Reps: reps}
	if reps <= 0 {
		return report, cgerr.NewInvalidArgError("cgbench.DotBench.Run", "reps must be positive, got %d", reps)
	}
	x, err := space.LoadVector(d.x)
	if err != nil {
		return report, err
	}
	defer space.FreeVector(x)
	y, err := space.LoadVector(d.y)
	if err != nil {
		return report, err
	}
	defer space.FreeVector(y)

	// Warmup
	if _, err := space.Dot(x, y); err != nil {
		return report, err
	}
	if err := space.Fence(); err != nil {
		return report, err
	}

	start := time.Now()
	for r := 0; r < reps; r++ {
		if report.Result, err = space.Dot(x, y); err != nil {
			d.logger.LogDot(context.Background(), report, err)
			return report, err
		}
	}
	if err := space.Fence(); err != nil {
		return report, err
	}
	report.Seconds = time.Since(start).Seconds()

	d.logger.LogDot(context.Background(), report, nil)
	return report, nil
}

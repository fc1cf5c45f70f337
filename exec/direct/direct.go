// Package direct is the direct-dispatch execution space: every kernel is a
// flat loop over fixed-size chunks fanned out with an errgroup, with no
// team or vector hierarchy in between.
package direct

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/cgbench/cgerr"
	"github.com/notargets/cgbench/exec"
)

// Name is the registry name of the direct space.
const Name = "direct"

func init() {
	exec.Register(Name, func(cfg exec.Config) (exec.Space, error) {
		return New(Config{Workers: cfg.Workers})
	})
}

const (
	// DefaultChunkSize is the number of vector entries per task.
	DefaultChunkSize = 1 << 15
	// DefaultRowsPerChunk is the number of matrix rows per SPMV task.
	DefaultRowsPerChunk = 512
)

// Config holds the direct space settings. Zero values select defaults.
type Config struct {
	Workers      int
	ChunkSize    int
	RowsPerChunk int
}

// Space launches each kernel as a bounded errgroup of chunk tasks.
type Space struct {
	exec.Host
	cfg Config
}

var _ exec.Space = (*Space)(nil)

// New creates a direct space.
func New(cfg Config) (*Space, error) {
	if cfg.Workers < 0 || cfg.ChunkSize < 0 || cfg.RowsPerChunk < 0 {
		return nil, cgerr.NewInvalidArgError("direct.New", "negative setting in %+v", cfg)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.RowsPerChunk == 0 {
		cfg.RowsPerChunk = DefaultRowsPerChunk
	}
	return &Space{cfg: cfg}, nil
}

func (s *Space) Name() string { return Name }

// Config returns the resolved settings.
func (s *Space) Config() Config { return s.cfg }

func (s *Space) Close() error { return nil }

// launch runs body over [0, n) in chunks of size and waits for completion.
func (s *Space) launch(n, size int, body func(chunk, begin, end int)) error {
	if n <= 0 {
		return nil
	}
	chunks := (n + size - 1) / size
	if chunks == 1 {
		body(0, 0, n)
		return nil
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for c := 0; c < chunks; c++ {
		begin := c * size
		end := begin + size
		if end > n {
			end = n
		}
		g.Go(func() error {
			body(c, begin, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cgerr.NewExecutionError("direct.launch", "chunk failed", err)
	}
	return nil
}

func (s *Space) Axpby(z exec.Vector, alpha float64, x exec.Vector, beta float64, y exec.Vector) error {
	zd, xd, yd, err := exec.HostAxpby("direct.Axpby", z, x, y)
	if err != nil {
		return err
	}
	err = s.launch(len(zd), s.cfg.ChunkSize, func(_, begin, end int) {
		for i := begin; i < end; i++ {
			zd[i] = alpha*xd[i] + beta*yd[i]
		}
	})
	return err
}

func (s *Space) Dot(x, y exec.Vector) (float64, error) {
	xd, yd, err := exec.HostDot("direct.Dot", x, y)
	if err != nil {
		return 0, err
	}
	n := len(xd)
	partials := make([]float64, (n+s.cfg.ChunkSize-1)/s.cfg.ChunkSize)
	err = s.launch(n, s.cfg.ChunkSize, func(chunk, begin, end int) {
		var sum float64
		for i := begin; i < end; i++ {
			sum += xd[i] * yd[i]
		}
		partials[chunk] = sum
	})
	if err != nil {
		return 0, err
	}
	var result float64
	for _, p := range partials {
		result += p
	}
	return result, nil
}

func (s *Space) SPMV(y exec.Vector, a exec.Matrix, x exec.Vector) error {
	yd, m, xd, err := exec.HostSPMV("direct.SPMV", y, a, x)
	if err != nil {
		return err
	}
	rowPtr, colIdx, values := m.RowPtr, m.ColIdx, m.Values
	err = s.launch(len(yd), s.cfg.RowsPerChunk, func(_, begin, end int) {
		for row := begin; row < end; row++ {
			var sum float64
			for k := rowPtr[row]; k < rowPtr[row+1]; k++ {
				sum += values[k] * xd[colIdx[k]]
			}
			yd[row] = sum
		}
	})
	return err
}

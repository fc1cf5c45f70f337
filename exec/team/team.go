// Package team is the portable kernel-dispatch execution space: kernels are
// expressed against a league/team/vector hierarchy and launched onto a
// persistent goroutine pool.
//
// On the host every team runs on one worker and its threads execute one
// after another, so TeamSize only changes the order rows are visited. The
// vector level is a lane-split reduction.
package team

import (
	"github.com/notargets/cgbench/cgerr"
	"github.com/notargets/cgbench/exec"
)

// Name is the registry name of the team space.
const Name = "team"

func init() {
	exec.Register(Name, func(cfg exec.Config) (exec.Space, error) {
		return New(Config{Workers: cfg.Workers})
	})
}

// Host defaults for the SPMV team policy.
const (
	DefaultRowsPerTeam = 512
	DefaultTeamSize    = 1
	// RequestedVectorLength is the lane count asked for by the SPMV policy;
	// it is clamped to DefaultVectorLength.
	RequestedVectorLength = 8
)

// Config holds the team space settings. Zero values select defaults.
type Config struct {
	Workers      int
	RowsPerTeam  int
	TeamSize     int
	VectorLength int
}

// Space launches kernels through TeamParallelFor / ParallelFor / ParallelReduce.
type Space struct {
	exec.Host
	cfg  Config
	pool *pool
}

var _ exec.Space = (*Space)(nil)

// New creates a team space and starts its workers.
func New(cfg Config) (*Space, error) {
	if cfg.Workers < 0 || cfg.RowsPerTeam < 0 || cfg.TeamSize < 0 || cfg.VectorLength < 0 {
		return nil, cgerr.NewInvalidArgError("team.New", "negative setting in %+v", cfg)
	}
	if cfg.RowsPerTeam == 0 {
		cfg.RowsPerTeam = DefaultRowsPerTeam
	}
	if cfg.TeamSize == 0 {
		cfg.TeamSize = DefaultTeamSize
	}
	if cfg.VectorLength == 0 {
		cfg.VectorLength = RequestedVectorLength
		if simd := DefaultVectorLength(); simd < cfg.VectorLength {
			cfg.VectorLength = simd
		}
	}
	if cfg.VectorLength > maxVectorLength {
		return nil, cgerr.NewInvalidArgError("team.New", "vector length %d exceeds %d", cfg.VectorLength, maxVectorLength)
	}

	s := &Space{cfg: cfg, pool: newPool(cfg.Workers)}
	s.cfg.Workers = s.pool.workers
	return s, nil
}

func (s *Space) Name() string { return Name }

// Config returns the resolved settings.
func (s *Space) Config() Config { return s.cfg }

// Close stops the workers. Launches after Close fail.
func (s *Space) Close() error {
	s.pool.close()
	return nil
}

// ParallelFor calls fn(i) for every i in [0, n).
func (s *Space) ParallelFor(n int, fn func(i int)) error {
	return s.pool.run(n, func(_, begin, end int) {
		for i := begin; i < end; i++ {
			fn(i)
		}
	})
}

// ParallelReduce returns the sum of fn(i) over [0, n). Each worker reduces
// its chunk into a partial; partials are combined in chunk order.
func (s *Space) ParallelReduce(n int, fn func(i int) float64) (float64, error) {
	partials := make([]float64, s.pool.workers)
	err := s.pool.run(n, func(chunk, begin, end int) {
		var sum float64
		for i := begin; i < end; i++ {
			sum += fn(i)
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

// TeamParallelFor launches p.LeagueSize teams of p.TeamSize threads.
func (s *Space) TeamParallelFor(p Policy, fn func(m Member)) error {
	if p.TeamSize <= 0 || p.VectorLength <= 0 || p.VectorLength > maxVectorLength {
		return cgerr.NewInvalidArgError("team.TeamParallelFor", "invalid policy %+v", p)
	}
	return s.pool.run(p.LeagueSize, func(_, begin, end int) {
		for league := begin; league < end; league++ {
			for t := 0; t < p.TeamSize; t++ {
				fn(Member{leagueRank: league, teamRank: t, policy: p})
			}
		}
	})
}

func (s *Space) Axpby(z exec.Vector, alpha float64, x exec.Vector, beta float64, y exec.Vector) error {
	zd, xd, yd, err := exec.HostAxpby("team.Axpby", z, x, y)
	if err != nil {
		return err
	}
	return s.pool.run(len(zd), func(_, begin, end int) {
		for i := begin; i < end; i++ {
			zd[i] = alpha*xd[i] + beta*yd[i]
		}
	})
}

func (s *Space) Dot(x, y exec.Vector) (float64, error) {
	xd, yd, err := exec.HostDot("team.Dot", x, y)
	if err != nil {
		return 0, err
	}
	return s.ParallelReduce(len(xd), func(i int) float64 {
		return xd[i] * yd[i]
	})
}

func (s *Space) SPMV(y exec.Vector, a exec.Matrix, x exec.Vector) error {
	yd, m, xd, err := exec.HostSPMV("team.SPMV", y, a, x)
	if err != nil {
		return err
	}
	nrows := len(yd)
	rowsPerTeam := s.cfg.RowsPerTeam
	policy := Policy{
		LeagueSize:   (nrows + rowsPerTeam - 1) / rowsPerTeam,
		TeamSize:     s.cfg.TeamSize,
		VectorLength: s.cfg.VectorLength,
	}
	rowPtr, colIdx, values := m.RowPtr, m.ColIdx, m.Values

	return s.TeamParallelFor(policy, func(team Member) {
		firstRow := team.LeagueRank() * rowsPerTeam
		lastRow := firstRow + rowsPerTeam
		if lastRow > nrows {
			lastRow = nrows
		}
		TeamThreadRange(team, firstRow, lastRow, func(row int) {
			rowStart := rowPtr[row]
			rowLength := int(rowPtr[row+1] - rowStart)
			yd[row] = ThreadVectorReduce(team, rowLength, func(i int) float64 {
				k := rowStart + int64(i)
				return values[k] * xd[colIdx[k]]
			})
		})
	})
}

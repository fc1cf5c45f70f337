package team

import (
	"golang.org/x/sys/cpu"
)

// maxVectorLength bounds the lanes of a vector-level reduction.
const maxVectorLength = 16

// Policy describes a hierarchical launch: LeagueSize teams, each of TeamSize
// threads, each thread owning VectorLength lanes.
type Policy struct {
	LeagueSize   int
	TeamSize     int
	VectorLength int
}

// Member identifies one thread of one team inside a TeamParallelFor launch.
type Member struct {
	leagueRank int
	teamRank   int
	policy     Policy
}

// LeagueRank returns the team index within the league.
func (m Member) LeagueRank() int { return m.leagueRank }

// LeagueSize returns the number of teams.
func (m Member) LeagueSize() int { return m.policy.LeagueSize }

// TeamRank returns the thread index within the team.
func (m Member) TeamRank() int { return m.teamRank }

// TeamSize returns the number of threads per team.
func (m Member) TeamSize() int { return m.policy.TeamSize }

// VectorLength returns the lanes per thread.
func (m Member) VectorLength() int { return m.policy.VectorLength }

// TeamThreadRange distributes [begin, end) across the threads of m's team.
// Each thread of the team visits a disjoint strided subset.
func TeamThreadRange(m Member, begin, end int, fn func(i int)) {
	for i := begin + m.teamRank; i < end; i += m.policy.TeamSize {
		fn(i)
	}
}

// ThreadVectorReduce sums fn(i) for i in [0, n) over m's vector lanes.
// Lane l accumulates indices l, l+VectorLength, ...; the lanes are combined
// in order at the end.
func ThreadVectorReduce(m Member, n int, fn func(i int) float64) float64 {
	vl := m.policy.VectorLength
	var lanes [maxVectorLength]float64
	for base := 0; base < n; base += vl {
		end := base + vl
		if end > n {
			end = n
		}
		for i := base; i < end; i++ {
			lanes[i-base] += fn(i)
		}
	}
	var sum float64
	for l := 0; l < vl; l++ {
		sum += lanes[l]
	}
	return sum
}

// DefaultVectorLength is the number of float64 lanes the host SIMD unit
// holds, used when Config.VectorLength is zero.
func DefaultVectorLength() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 8
	case cpu.X86.HasAVX2, cpu.X86.HasAVX:
		return 4
	case cpu.ARM64.HasASIMD:
		return 2
	default:
		return 1
	}
}

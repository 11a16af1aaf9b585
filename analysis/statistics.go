package analysis

import (
	"errors"
	"fmt"

	"github.com/sarchlab/cachesim/mem/hierarchy"
)

var (
	// ErrNoAccesses is returned when statistics are requested for a run
	// without any access.
	ErrNoAccesses = errors.New("no accesses recorded")

	// ErrAccessCountMismatch is returned when the number of accesses given to
	// Finalize differs from the number of outcomes recorded.
	ErrAccessCountMismatch = errors.New("access count mismatch")
)

// Counts are the raw tallies of a run.
type Counts struct {
	L1Hits         int `json:"l1_hits"`
	L2Hits         int `json:"l2_hits"`
	MemoryAccesses int `json:"memory_accesses"`
	TotalCost      int `json:"total_cost"`
}

// Accesses returns the number of recorded accesses.
func (c Counts) Accesses() int {
	return c.L1Hits + c.L2Hits + c.MemoryAccesses
}

// RunStatistics summarizes one strategy over one address stream.
type RunStatistics struct {
	Name           string          `json:"name"`
	Costs          hierarchy.Costs `json:"costs"`
	TotalAccesses  int             `json:"total_accesses"`
	L1Hits         int             `json:"l1_hits"`
	L2Hits         int             `json:"l2_hits"`
	MemoryAccesses int             `json:"memory_accesses"`
	TotalCost      int             `json:"total_cost"`

	// L1HitRatio is L1Hits over all accesses.
	L1HitRatio float64 `json:"l1_hit_ratio"`

	// L2HitRatio is L2Hits over the accesses that missed L1. It is the ratio
	// AMAT uses.
	L2HitRatio float64 `json:"l2_hit_ratio"`

	// L2GlobalHitRatio is L2Hits over all accesses.
	L2GlobalHitRatio float64 `json:"l2_global_hit_ratio"`

	// HitRatio is the share of accesses that did not reach memory.
	HitRatio float64 `json:"hit_ratio"`

	AMAT        float64 `json:"amat"`
	AverageCost float64 `json:"average_cost"`
}

// L1Misses returns the number of accesses that probed L2.
func (s RunStatistics) L1Misses() int {
	return s.TotalAccesses - s.L1Hits
}

func computeStatistics(
	name string,
	costs hierarchy.Costs,
	counts Counts,
	total int,
) (RunStatistics, error) {
	if total <= 0 {
		return RunStatistics{}, fmt.Errorf("%s: %w", name, ErrNoAccesses)
	}

	if counts.Accesses() != total {
		return RunStatistics{}, fmt.Errorf(
			"%s: %w: %d outcomes recorded, %d accesses expected",
			name, ErrAccessCountMismatch, counts.Accesses(), total)
	}

	s := RunStatistics{
		Name:           name,
		Costs:          costs,
		TotalAccesses:  total,
		L1Hits:         counts.L1Hits,
		L2Hits:         counts.L2Hits,
		MemoryAccesses: counts.MemoryAccesses,
		TotalCost:      counts.TotalCost,
	}

	fTotal := float64(total)
	s.L1HitRatio = float64(s.L1Hits) / fTotal
	s.L2HitRatio = float64(s.L2Hits) / float64(max(1, total-s.L1Hits))
	s.L2GlobalHitRatio = float64(s.L2Hits) / fTotal
	s.HitRatio = float64(s.L1Hits+s.L2Hits) / fTotal
	s.AverageCost = float64(s.TotalCost) / fTotal

	s.AMAT = float64(costs.L1) +
		(1-s.L1HitRatio)*
			(float64(costs.L2)+(1-s.L2HitRatio)*float64(costs.Memory))

	return s, nil
}

// Package hierarchy composes two cache levels and main memory under an
// inclusive fill policy.
package hierarchy

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// ErrInclusionViolated is returned by CheckInclusion when L1 holds a line
// that L2 does not.
var ErrInclusionViolated = errors.New("inclusion violated")

// A Hierarchy is an L1 and an L2 of the same strategy in front of main
// memory.
//
// Every fill that reaches L2 is mirrored into L1, and a line that L2 replaces
// is dropped from L1, so L1 is always a subset of L2.
type Hierarchy struct {
	hooking.HookableBase

	mu       sync.Mutex
	name     string
	strategy cache.Strategy
	l1, l2   *cache.Level
	costs    Costs
}

// Name returns the name of the hierarchy.
func (h *Hierarchy) Name() string {
	return h.name
}

// Strategy returns the mapping strategy of both levels.
func (h *Hierarchy) Strategy() cache.Strategy {
	return h.strategy
}

// Costs returns the cost table.
func (h *Hierarchy) Costs() Costs {
	return h.costs
}

// Levels returns L1 and L2. Callers must not mutate them while the hierarchy
// is being accessed.
func (h *Hierarchy) Levels() (l1, l2 *cache.Level) {
	return h.l1, h.l2
}

// Access resolves one address and reports how it was served. Hooks are
// invoked after the hierarchy has been updated.
func (h *Hierarchy) Access(addr uint64) AccessOutcome {
	h.mu.Lock()
	outcome := h.resolve(addr)
	h.mu.Unlock()

	for _, e := range outcome.Evictions {
		h.InvokeHook(hooking.HookCtx{
			Domain: h,
			Pos:    hooking.HookPosEvict,
			Item:   e,
		})
	}

	h.InvokeHook(hooking.HookCtx{
		Domain: h,
		Pos:    hooking.HookPosAccess,
		Item:   outcome,
	})

	return outcome
}

func (h *Hierarchy) resolve(addr uint64) AccessOutcome {
	outcome := AccessOutcome{Address: addr}

	loc, hit := h.l1.Lookup(addr)
	if hit {
		h.l1.Touch(loc.SetIndex, loc.Way)
		outcome.L1 = placement(h.l1, addr, loc)
		outcome.ServedBy = ServedByL1
		outcome.Cost = h.costs.Of(ServedByL1)

		return outcome
	}

	outcome.L2Probed = true

	loc, hit = h.l2.Lookup(addr)
	if hit {
		h.l2.Touch(loc.SetIndex, loc.Way)
		outcome.L2 = placement(h.l2, addr, loc)
		outcome.L1 = h.fill(h.l1, addr, &outcome)
		outcome.ServedBy = ServedByL2
		outcome.Cost = h.costs.Of(ServedByL2)

		return outcome
	}

	outcome.L2 = h.fill(h.l2, addr, &outcome)
	outcome.L1 = h.fill(h.l1, addr, &outcome)
	outcome.ServedBy = ServedByMemory
	outcome.Cost = h.costs.Of(ServedByMemory)

	return outcome
}

// fill installs addr into the victim slot of level. A line replaced in L2 is
// also removed from L1.
func (h *Hierarchy) fill(
	level *cache.Level,
	addr uint64,
	outcome *AccessOutcome,
) Placement {
	loc := level.Place(addr)

	victim, occupied := level.Occupant(loc.SetIndex, loc.Way)
	if occupied {
		outcome.Evictions = append(outcome.Evictions, Eviction{
			Line:   victim,
			Level:  level.Name(),
			Reason: Replaced,
		})
	}

	if occupied && level == h.l2 {
		dropped, wasInL1 := h.l1.Invalidate(victim.BlockAddress)
		if wasInL1 {
			outcome.Evictions = append(outcome.Evictions, Eviction{
				Line:   dropped,
				Level:  h.l1.Name(),
				Reason: BackInvalidated,
			})
		}
	}

	level.Install(loc.SetIndex, loc.Way, loc.Tag, addr)

	return placement(level, addr, loc)
}

func placement(level *cache.Level, addr uint64, loc cache.Location) Placement {
	d := level.Decode(addr)

	return Placement{
		Location:   loc,
		WordOffset: d.WordOffset,
		ByteOffset: d.ByteOffset,
	}
}

// CheckInclusion verifies that every line resident in L1 is resident in L2.
func (h *Hierarchy) CheckInclusion() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, line := range h.l1.ResidentLines() {
		if !h.l2.Contains(line.BlockAddress) {
			return fmt.Errorf("%w: %s holds line 0x%x (set %d, way %d) "+
				"that is not in %s",
				ErrInclusionViolated, h.l1.Name(), line.BlockAddress,
				line.SetIndex, line.Way, h.l2.Name())
		}
	}

	return nil
}

// Reset empties both levels.
func (h *Hierarchy) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.l1.Reset()
	h.l2.Reset()
}

// A Snapshot is a copy of both levels of a hierarchy.
type Snapshot struct {
	Name     string              `json:"name"`
	Strategy string              `json:"strategy"`
	Costs    Costs               `json:"costs"`
	L1       cache.LevelSnapshot `json:"l1"`
	L2       cache.LevelSnapshot `json:"l2"`
}

// Snapshot copies the current content of both levels. It is safe to call
// while another goroutine accesses the hierarchy.
func (h *Hierarchy) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	return Snapshot{
		Name:     h.name,
		Strategy: h.strategy.String(),
		Costs:    h.costs,
		L1:       h.l1.Snapshot(),
		L2:       h.l2.Snapshot(),
	}
}

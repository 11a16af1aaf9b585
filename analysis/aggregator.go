// Package analysis turns access outcomes into hit ratios and average memory
// access times.
package analysis

import (
	"sync"

	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// An Aggregator tallies the outcomes of one hierarchy. It can be registered
// as a hook on the hierarchy or be fed with Record.
type Aggregator struct {
	mu     sync.Mutex
	name   string
	costs  hierarchy.Costs
	counts Counts
}

// NewAggregator creates an aggregator that computes statistics with the
// given costs.
func NewAggregator(name string, costs hierarchy.Costs) *Aggregator {
	return &Aggregator{
		name:  name,
		costs: costs,
	}
}

// NewAggregatorFor creates an aggregator that is named after h, uses its
// costs, and is registered as a hook on it.
func NewAggregatorFor(h *hierarchy.Hierarchy) *Aggregator {
	a := NewAggregator(h.Name(), h.Costs())
	h.AcceptHook(a)

	return a
}

// Name returns the name of the aggregated hierarchy.
func (a *Aggregator) Name() string {
	return a.name
}

// Func records the outcome carried by an access hook.
func (a *Aggregator) Func(ctx hooking.HookCtx) {
	if ctx.Pos != hooking.HookPosAccess {
		return
	}

	outcome, ok := ctx.Item.(hierarchy.AccessOutcome)
	if !ok {
		return
	}

	a.Record(outcome)
}

// Record counts one outcome.
func (a *Aggregator) Record(o hierarchy.AccessOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch o.ServedBy {
	case hierarchy.ServedByL1:
		a.counts.L1Hits++
	case hierarchy.ServedByL2:
		a.counts.L2Hits++
	default:
		a.counts.MemoryAccesses++
	}

	a.counts.TotalCost += o.Cost
}

// Counts returns the tallies so far.
func (a *Aggregator) Counts() Counts {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.counts
}

// Current returns the statistics of what has been recorded so far.
func (a *Aggregator) Current() (RunStatistics, error) {
	counts := a.Counts()
	return computeStatistics(a.name, a.costs, counts, counts.Accesses())
}

// Finalize computes the statistics of a run of totalAccesses accesses. It
// fails if nothing was accessed or if the recorded outcomes do not add up to
// totalAccesses.
func (a *Aggregator) Finalize(totalAccesses int) (RunStatistics, error) {
	return computeStatistics(a.name, a.costs, a.Counts(), totalAccesses)
}

// Reset clears the tallies.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.counts = Counts{}
}

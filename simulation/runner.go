package simulation

import (
	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/workload"
)

// A Runner feeds addresses to one hierarchy and aggregates the outcomes.
type Runner struct {
	cfg        config.Config
	hierarchy  *hierarchy.Hierarchy
	aggregator *analysis.Aggregator
	accesses   int
}

// NewRunner builds an empty hierarchy of the given strategy, named after the
// strategy.
func NewRunner(s cache.Strategy, cfg config.Config) (*Runner, error) {
	return newRunner(s.String(), s, cfg)
}

func newRunner(
	name string,
	s cache.Strategy,
	cfg config.Config,
) (*Runner, error) {
	h, err := hierarchy.MakeBuilder().
		WithConfig(cfg).
		WithStrategy(s).
		Build(name)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:        cfg,
		hierarchy:  h,
		aggregator: analysis.NewAggregatorFor(h),
	}

	return r, nil
}

// Hierarchy returns the hierarchy driven by the runner.
func (r *Runner) Hierarchy() *hierarchy.Hierarchy {
	return r.hierarchy
}

// Aggregator returns the aggregator that counts the outcomes.
func (r *Runner) Aggregator() *analysis.Aggregator {
	return r.aggregator
}

// Step accesses one address. The address is not checked against the address
// space.
func (r *Runner) Step(addr uint64) hierarchy.AccessOutcome {
	r.accesses++
	return r.hierarchy.Access(addr)
}

// Run validates the stream and then accesses every address in order. Nothing
// is accessed if the stream is invalid.
func (r *Runner) Run(stream []uint64) (analysis.RunStatistics, error) {
	err := workload.Validate(stream, r.cfg)
	if err != nil {
		return analysis.RunStatistics{}, err
	}

	for _, addr := range stream {
		r.Step(addr)
	}

	return r.Statistics()
}

// Statistics returns the statistics of every access made so far.
func (r *Runner) Statistics() (analysis.RunStatistics, error) {
	return r.aggregator.Finalize(r.accesses)
}

// Reset empties the hierarchy and clears the statistics.
func (r *Runner) Reset() {
	r.hierarchy.Reset()
	r.aggregator.Reset()
	r.accesses = 0
}

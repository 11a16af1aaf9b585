package simulation

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/sim/hooking"
	"github.com/sarchlab/cachesim/workload"
)

// A StrategyResult is the statistics of one strategy in a comparison.
type StrategyResult struct {
	Strategy   cache.Strategy
	Statistics analysis.RunStatistics
}

// A Comparison holds the results of the three strategies over the same
// address stream, in the order of cache.Strategies.
type Comparison struct {
	Pattern string
	Results []StrategyResult
}

// Result returns the statistics of strategy s.
func (c Comparison) Result(s cache.Strategy) (analysis.RunStatistics, bool) {
	for _, r := range c.Results {
		if r.Strategy == s {
			return r.Statistics, true
		}
	}

	return analysis.RunStatistics{}, false
}

// Statistics returns the statistics of every strategy.
func (c Comparison) Statistics() []analysis.RunStatistics {
	stats := make([]analysis.RunStatistics, 0, len(c.Results))
	for _, r := range c.Results {
		stats = append(stats, r.Statistics)
	}

	return stats
}

// Fastest returns the result with the lowest average cost. Ties go to the
// strategy listed first.
func (c Comparison) Fastest() StrategyResult {
	best := c.Results[0]
	for _, r := range c.Results[1:] {
		if r.Statistics.AverageCost < best.Statistics.AverageCost {
			best = r
		}
	}

	return best
}

// A ComparisonRunner feeds the same stream to one hierarchy of each strategy.
type ComparisonRunner struct {
	cfg      config.Config
	parallel bool
	runners  []*Runner
}

// NewComparisonRunner builds a direct-mapped, a fully associative and a
// set-associative hierarchy from cfg. The hierarchies are named after their
// strategies.
func NewComparisonRunner(cfg config.Config) (*ComparisonRunner, error) {
	return newComparisonRunner("", cfg)
}

// newComparisonRunner prefixes the hierarchy names with prefix, if given, so
// that several comparisons can be told apart.
func newComparisonRunner(
	prefix string,
	cfg config.Config,
) (*ComparisonRunner, error) {
	c := &ComparisonRunner{cfg: cfg}

	for _, s := range cache.Strategies() {
		name := s.String()
		if prefix != "" {
			name = prefix + "." + name
		}

		r, err := newRunner(name, s, cfg)
		if err != nil {
			return nil, err
		}

		c.runners = append(c.runners, r)
	}

	return c, nil
}

// WithParallel makes Run drive each hierarchy in its own goroutine. Hooks
// shared by several hierarchies must then be safe for concurrent use.
func (c *ComparisonRunner) WithParallel() *ComparisonRunner {
	c.parallel = true
	return c
}

// AcceptHook registers hook on every hierarchy.
func (c *ComparisonRunner) AcceptHook(hook hooking.Hook) {
	for _, r := range c.runners {
		r.Hierarchy().AcceptHook(hook)
	}
}

// Runners returns one runner per strategy.
func (c *ComparisonRunner) Runners() []*Runner {
	return c.runners
}

// Hierarchies returns one hierarchy per strategy.
func (c *ComparisonRunner) Hierarchies() []*hierarchy.Hierarchy {
	hierarchies := make([]*hierarchy.Hierarchy, 0, len(c.runners))
	for _, r := range c.runners {
		hierarchies = append(hierarchies, r.Hierarchy())
	}

	return hierarchies
}

// Run validates the stream and feeds it to every hierarchy. Nothing is
// accessed if the stream is invalid. The result does not rank the
// strategies.
func (c *ComparisonRunner) Run(stream []uint64) (Comparison, error) {
	err := workload.Validate(stream, c.cfg)
	if err != nil {
		return Comparison{}, err
	}

	if c.parallel {
		c.runParallel(stream)
	} else {
		c.runSerial(stream)
	}

	comparison := Comparison{}
	for _, r := range c.runners {
		stats, err := r.Statistics()
		if err != nil {
			return Comparison{}, err
		}

		comparison.Results = append(comparison.Results, StrategyResult{
			Strategy:   r.Hierarchy().Strategy(),
			Statistics: stats,
		})
	}

	return comparison, nil
}

func (c *ComparisonRunner) runSerial(stream []uint64) {
	for _, addr := range stream {
		for _, r := range c.runners {
			r.Step(addr)
		}
	}
}

func (c *ComparisonRunner) runParallel(stream []uint64) {
	var wg sync.WaitGroup

	for _, r := range c.runners {
		wg.Add(1)

		go func(r *Runner) {
			defer wg.Done()

			for _, addr := range stream {
				r.Step(addr)
			}
		}(r)
	}

	wg.Wait()
}

// PatternSetup is called with the runner of each pattern before the pattern
// is run, e.g. to attach hooks.
type PatternSetup func(p workload.Pattern, runner *ComparisonRunner)

// ComparePatterns compares the three strategies on a sequential, a random and
// a repeated stream of n accesses. Each pattern gets fresh hierarchies whose
// names start with the pattern name. setup may be nil.
func ComparePatterns(
	cfg config.Config,
	n int,
	rng *rand.Rand,
	setup PatternSetup,
) ([]Comparison, error) {
	comparisons := make([]Comparison, 0, len(workload.Patterns()))

	for _, p := range workload.Patterns() {
		stream, err := workload.Generate(p, n, cfg, rng)
		if err != nil {
			return nil, fmt.Errorf("%s pattern: %w", p, err)
		}

		runner, err := newComparisonRunner(p.String(), cfg)
		if err != nil {
			return nil, err
		}

		if setup != nil {
			setup(p, runner)
		}

		comparison, err := runner.Run(stream)
		if err != nil {
			return nil, fmt.Errorf("%s pattern: %w", p, err)
		}

		comparison.Pattern = p.String()
		comparisons = append(comparisons, comparison)
	}

	return comparisons, nil
}

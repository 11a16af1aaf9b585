package hierarchy

import (
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache"
)

// Builder can build hierarchies.
type Builder struct {
	cfg      config.Config
	strategy cache.Strategy
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg:      config.Default(),
		strategy: cache.SetAssociative,
	}
}

// WithConfig sets the geometry and the costs.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithStrategy sets the mapping strategy used by both levels.
func (b Builder) WithStrategy(s cache.Strategy) Builder {
	b.strategy = s
	return b
}

// Build builds an empty hierarchy. Level names are derived from name, e.g.
// "DirectMapped.L1".
func (b Builder) Build(name string) (*Hierarchy, error) {
	err := b.cfg.Validate()
	if err != nil {
		return nil, err
	}

	levelBuilder := cache.MakeBuilder().
		WithStrategy(b.strategy).
		WithWordSize(b.cfg.WordSize).
		WithWordsPerLine(b.cfg.WordsPerLine)

	l1, err := levelBuilder.
		WithNumEntries(b.cfg.L1Entries).
		WithAssociativity(b.cfg.L1Associativity).
		Build(name + ".L1")
	if err != nil {
		return nil, err
	}

	l2, err := levelBuilder.
		WithNumEntries(b.cfg.L2Entries).
		WithAssociativity(b.cfg.L2Associativity).
		Build(name + ".L2")
	if err != nil {
		return nil, err
	}

	h := &Hierarchy{
		name:     name,
		strategy: b.strategy,
		l1:       l1,
		l2:       l2,
		costs: Costs{
			L1:     b.cfg.L1Cost,
			L2:     b.cfg.L2Cost,
			Memory: b.cfg.MemoryCost,
		},
	}

	return h, nil
}

// New builds a hierarchy named after its strategy.
func New(s cache.Strategy, cfg config.Config) (*Hierarchy, error) {
	return MakeBuilder().
		WithConfig(cfg).
		WithStrategy(s).
		Build(s.String())
}

package cache

import (
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache/addressing"
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
)

// Builder can build cache levels.
type Builder struct {
	strategy      Strategy
	numEntries    int
	associativity int
	wordSize      int
	wordsPerLine  int
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		strategy:      SetAssociative,
		numEntries:    16,
		associativity: 2,
		wordSize:      4,
		wordsPerLine:  4,
	}
}

// WithStrategy sets the mapping strategy.
func (b Builder) WithStrategy(s Strategy) Builder {
	b.strategy = s
	return b
}

// WithNumEntries sets the total number of slots.
func (b Builder) WithNumEntries(n int) Builder {
	b.numEntries = n
	return b
}

// WithAssociativity sets the number of ways per set. Only the set-associative
// strategy uses it.
func (b Builder) WithAssociativity(a int) Builder {
	b.associativity = a
	return b
}

// WithWordSize sets the word size in bytes.
func (b Builder) WithWordSize(n int) Builder {
	b.wordSize = n
	return b
}

// WithWordsPerLine sets the number of words in a line.
func (b Builder) WithWordsPerLine(n int) Builder {
	b.wordsPerLine = n
	return b
}

func (b Builder) parametersMustBeValid() error {
	checks := []struct {
		field string
		value int
	}{
		{"entries", b.numEntries},
		{"word_size", b.wordSize},
		{"words_per_line", b.wordsPerLine},
	}

	for _, c := range checks {
		if c.value <= 0 {
			return &config.ConfigurationError{
				Field: c.field, Value: c.value, Reason: "must be positive",
			}
		}
	}

	if b.strategy != SetAssociative {
		return nil
	}

	if b.associativity <= 0 {
		return &config.ConfigurationError{
			Field: "associativity", Value: b.associativity,
			Reason: "must be positive",
		}
	}

	if b.numEntries%b.associativity != 0 {
		return &config.ConfigurationError{
			Field: "associativity", Value: b.associativity,
			Reason: "does not divide the number of entries",
		}
	}

	return nil
}

// Build builds a cache level with all slots invalid.
func (b Builder) Build(name string) (*Level, error) {
	err := b.parametersMustBeValid()
	if err != nil {
		return nil, err
	}

	numSets, numWays := b.strategy.layout(b.numEntries, b.associativity)

	l := &Level{
		name:     name,
		strategy: b.strategy,
		geometry: addressing.Geometry{
			NumSets:      numSets,
			WordsPerLine: b.wordsPerLine,
			WordSize:     b.wordSize,
		},
		tags: tagging.NewTagArray(numSets, numWays),
	}

	if b.strategy.IsAssociative() {
		l.victimFinder = tagging.NewLRUVictimFinder()
	} else {
		l.victimFinder = tagging.NewFirstWayVictimFinder()
	}

	return l, nil
}

// Package config defines the parameters of a cache hierarchy simulation.
package config

import "fmt"

// Config describes the geometry and the cost model shared by every hierarchy
// built for one run. A Config is a plain value; nothing mutates it after it
// has been validated.
type Config struct {
	// Number of slots in L1 and L2.
	L1Entries int `yaml:"l1_entries"`
	L2Entries int `yaml:"l2_entries"`

	// WordSize is in bytes.
	WordSize     int `yaml:"word_size"`
	WordsPerLine int `yaml:"words_per_line"`

	// Ways per set, used by the set-associative strategy only.
	L1Associativity int `yaml:"l1_associativity"`
	L2Associativity int `yaml:"l2_associativity"`

	// AddressSpaceSize is in bytes. Valid addresses are
	// [0, AddressSpaceSize).
	AddressSpaceSize uint64 `yaml:"address_space_size"`

	// Cycles charged for probing each level.
	L1Cost     int `yaml:"l1_cost"`
	L2Cost     int `yaml:"l2_cost"`
	MemoryCost int `yaml:"memory_cost"`
}

// Default returns the reference configuration: a 16-entry L1 and a 64-entry
// L2 with 16-byte lines over a 4 KiB address space.
func Default() Config {
	return Config{
		L1Entries:        16,
		L2Entries:        64,
		WordSize:         4,
		WordsPerLine:     4,
		L1Associativity:  2,
		L2Associativity:  4,
		AddressSpaceSize: 0x1000,
		L1Cost:           1,
		L2Cost:           10,
		MemoryCost:       100,
	}
}

// BlockSize returns the number of bytes in one cache line.
func (c Config) BlockSize() int {
	return c.WordsPerLine * c.WordSize
}

// L1Sets returns the number of L1 sets under the set-associative strategy.
func (c Config) L1Sets() int {
	return c.L1Entries / c.L1Associativity
}

// L2Sets returns the number of L2 sets under the set-associative strategy.
func (c Config) L2Sets() int {
	return c.L2Entries / c.L2Associativity
}

// Validate reports the first parameter that makes the configuration unusable.
func (c Config) Validate() error {
	positive := []struct {
		field string
		value int
	}{
		{"l1_entries", c.L1Entries},
		{"l2_entries", c.L2Entries},
		{"word_size", c.WordSize},
		{"words_per_line", c.WordsPerLine},
		{"l1_associativity", c.L1Associativity},
		{"l2_associativity", c.L2Associativity},
	}

	for _, p := range positive {
		if p.value <= 0 {
			return &ConfigurationError{
				Field:  p.field,
				Value:  p.value,
				Reason: "must be positive",
			}
		}
	}

	if c.L1Entries%c.L1Associativity != 0 {
		return &ConfigurationError{
			Field: "l1_associativity",
			Value: c.L1Associativity,
			Reason: fmt.Sprintf("does not divide l1_entries (%d)",
				c.L1Entries),
		}
	}

	if c.L2Entries%c.L2Associativity != 0 {
		return &ConfigurationError{
			Field: "l2_associativity",
			Value: c.L2Associativity,
			Reason: fmt.Sprintf("does not divide l2_entries (%d)",
				c.L2Entries),
		}
	}

	if c.AddressSpaceSize == 0 {
		return &ConfigurationError{
			Field:  "address_space_size",
			Value:  0,
			Reason: "must be positive",
		}
	}

	if c.AddressSpaceSize < uint64(c.WordSize) {
		return &ConfigurationError{
			Field: "address_space_size",
			Value: c.AddressSpaceSize,
			Reason: fmt.Sprintf("is smaller than word_size (%d)",
				c.WordSize),
		}
	}

	costs := []struct {
		field string
		value int
	}{
		{"l1_cost", c.L1Cost},
		{"l2_cost", c.L2Cost},
		{"memory_cost", c.MemoryCost},
	}

	for _, p := range costs {
		if p.value < 0 {
			return &ConfigurationError{
				Field:  p.field,
				Value:  p.value,
				Reason: "must not be negative",
			}
		}
	}

	return nil
}

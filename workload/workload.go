// Package workload generates and checks the address streams fed to cache
// hierarchies.
package workload

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/config"
)

// DefaultUniqueAddresses is the number of distinct addresses the repeated
// pattern cycles through.
const DefaultUniqueAddresses = 20

var (
	// ErrInvalidAccessCount is returned when a stream of a non-positive
	// length is requested.
	ErrInvalidAccessCount = errors.New("invalid access count")

	// ErrEmptyStream is returned when a stream holds no address.
	ErrEmptyStream = errors.New("empty address stream")

	// ErrAddressOutOfRange is returned when a stream holds an address outside
	// the configured address space.
	ErrAddressOutOfRange = errors.New("address out of range")
)

// Pattern names a way of generating an address stream.
type Pattern int

// The supported patterns.
const (
	Sequential Pattern = iota
	Random
	Repeated
)

// Patterns lists every pattern in a fixed order.
func Patterns() []Pattern {
	return []Pattern{Sequential, Random, Repeated}
}

func (p Pattern) String() string {
	switch p {
	case Sequential:
		return "Sequential"
	case Random:
		return "Random"
	case Repeated:
		return "Repeated"
	default:
		return fmt.Sprintf("Pattern(%d)", int(p))
	}
}

// ParsePattern converts a pattern name, in any case, to a Pattern.
func ParsePattern(name string) (Pattern, error) {
	for _, p := range Patterns() {
		if strings.EqualFold(p.String(), name) {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown access pattern %q", name)
}

// Generate creates a stream of n addresses following p.
func Generate(
	p Pattern,
	n int,
	cfg config.Config,
	rng *rand.Rand,
) ([]uint64, error) {
	switch p {
	case Sequential:
		return SequentialStream(n, cfg)
	case Random:
		return RandomStream(n, cfg, rng)
	case Repeated:
		return RepeatedStream(n, DefaultUniqueAddresses, cfg, rng)
	default:
		return nil, fmt.Errorf("unknown access pattern %d", int(p))
	}
}

func mustHavePositiveCount(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAccessCount, n)
	}

	return nil
}

// SequentialStream walks the address space one word at a time, wrapping
// around at its end.
func SequentialStream(n int, cfg config.Config) ([]uint64, error) {
	err := mustHavePositiveCount(n)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	word := uint64(cfg.WordSize)
	stream := make([]uint64, n)

	for i := range stream {
		stream[i] = (uint64(i) * word) % cfg.AddressSpaceSize
	}

	return stream, nil
}

// RandomStream picks word-aligned addresses uniformly from the address space.
func RandomStream(
	n int,
	cfg config.Config,
	rng *rand.Rand,
) ([]uint64, error) {
	err := mustHavePositiveCount(n)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	stream := make([]uint64, n)
	for i := range stream {
		stream[i] = randomWord(cfg, rng)
	}

	return stream, nil
}

// RepeatedStream picks unique random word-aligned addresses and cycles
// through them. The addresses are not guaranteed to be distinct.
func RepeatedStream(
	n, unique int,
	cfg config.Config,
	rng *rand.Rand,
) ([]uint64, error) {
	err := mustHavePositiveCount(n)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	if unique <= 0 {
		return nil, fmt.Errorf("%w: %d unique addresses",
			ErrInvalidAccessCount, unique)
	}

	pool := make([]uint64, unique)
	for i := range pool {
		pool[i] = randomWord(cfg, rng)
	}

	stream := make([]uint64, n)
	for i := range stream {
		stream[i] = pool[i%unique]
	}

	return stream, nil
}

func randomWord(cfg config.Config, rng *rand.Rand) uint64 {
	word := uint64(cfg.WordSize)
	return rng.Uint64N(cfg.AddressSpaceSize/word) * word
}

// Parse reads explicit addresses. A "0x" prefix selects hexadecimal and a
// bare number is decimal.
func Parse(fields []string) ([]uint64, error) {
	stream := make([]uint64, 0, len(fields))

	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		addr, err := strconv.ParseUint(f, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse address %q: %w", f, err)
		}

		stream = append(stream, addr)
	}

	if len(stream) == 0 {
		return nil, ErrEmptyStream
	}

	return stream, nil
}

// Validate checks that a stream can be run against cfg. The first address
// outside the address space is reported.
func Validate(stream []uint64, cfg config.Config) error {
	if len(stream) == 0 {
		return ErrEmptyStream
	}

	for i, addr := range stream {
		if addr >= cfg.AddressSpaceSize {
			return fmt.Errorf("%w: 0x%x at position %d, space is 0x%x",
				ErrAddressOutOfRange, addr, i, cfg.AddressSpaceSize)
		}
	}

	return nil
}

package cache

import (
	"fmt"
	"strings"
)

// Strategy is the way a cache maps a line to the slots it may occupy.
type Strategy int

// The supported mapping strategies.
const (
	DirectMapped Strategy = iota
	FullyAssociative
	SetAssociative
)

// Strategies lists every strategy in a fixed order.
func Strategies() []Strategy {
	return []Strategy{DirectMapped, FullyAssociative, SetAssociative}
}

func (s Strategy) String() string {
	switch s {
	case DirectMapped:
		return "DirectMapped"
	case FullyAssociative:
		return "FullyAssociative"
	case SetAssociative:
		return "SetAssociative"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// IsAssociative returns true if a set can hold more than one line, which is
// when replacement needs LRU bookkeeping.
func (s Strategy) IsAssociative() bool {
	return s != DirectMapped
}

// ParseStrategy accepts the strategy names and their short forms "direct",
// "fully" and "set".
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "direct", "dm", "directmapped", "direct-mapped":
		return DirectMapped, nil
	case "fully", "fa", "fullyassociative", "fully-associative":
		return FullyAssociative, nil
	case "set", "sa", "setassociative", "set-associative":
		return SetAssociative, nil
	}

	return 0, fmt.Errorf("unknown mapping strategy %q", name)
}

// layout returns the number of sets and ways a cache of numEntries slots has
// under the strategy. associativity is only used by SetAssociative.
func (s Strategy) layout(numEntries, associativity int) (numSets, numWays int) {
	switch s {
	case DirectMapped:
		return numEntries, 1
	case FullyAssociative:
		return 1, numEntries
	default:
		return numEntries / associativity, associativity
	}
}

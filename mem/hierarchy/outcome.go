package hierarchy

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache"
)

// ServedBy tells which level of the hierarchy satisfied an access.
type ServedBy int

// The levels an access can be served by.
const (
	ServedByL1 ServedBy = iota
	ServedByL2
	ServedByMemory
)

func (s ServedBy) String() string {
	switch s {
	case ServedByL1:
		return "L1"
	case ServedByL2:
		return "L2"
	case ServedByMemory:
		return "Memory"
	default:
		return fmt.Sprintf("ServedBy(%d)", int(s))
	}
}

// Costs are the cycles charged for probing each level. Probing is
// sequential, so an access pays for every level it reaches.
type Costs struct {
	L1     int `json:"l1"`
	L2     int `json:"l2"`
	Memory int `json:"memory"`
}

// Of returns the cost of an access served by s.
func (c Costs) Of(s ServedBy) int {
	switch s {
	case ServedByL1:
		return c.L1
	case ServedByL2:
		return c.L1 + c.L2
	default:
		return c.L1 + c.L2 + c.Memory
	}
}

// Max returns the most an access can cost.
func (c Costs) Max() int {
	return c.Of(ServedByMemory)
}

// A Placement is where an address sits, or was put, in one level.
type Placement struct {
	cache.Location
	WordOffset int
	ByteOffset int
}

// EvictionReason tells why a line left a level.
type EvictionReason int

// The reasons a line can leave a level.
const (
	// Replaced means a fill chose the line's slot as its victim.
	Replaced EvictionReason = iota

	// BackInvalidated means L2 replaced the line, so the L1 copy was dropped
	// to keep L1 a subset of L2.
	BackInvalidated
)

func (r EvictionReason) String() string {
	if r == BackInvalidated {
		return "back-invalidated"
	}

	return "replaced"
}

// An Eviction describes a valid line that an access removed from a level.
type Eviction struct {
	cache.Line
	Level  string
	Reason EvictionReason
}

// An AccessOutcome is the result of resolving one address.
type AccessOutcome struct {
	Address  uint64
	ServedBy ServedBy
	Cost     int

	// L1 is where the address was found or filled in L1.
	L1 Placement

	// L2 is where the address was found or filled in L2. It is only set
	// when L1 missed.
	L2       Placement
	L2Probed bool

	Evictions []Eviction
}

// IsHit returns true if no memory access was needed.
func (o AccessOutcome) IsHit() bool {
	return o.ServedBy != ServedByMemory
}

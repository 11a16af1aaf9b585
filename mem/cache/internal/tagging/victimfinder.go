package tagging

// A VictimFinder decides which way of a set receives a new line.
type VictimFinder interface {
	FindVictim(set *Set) int
}

// LRUVictimFinder picks an empty way first and the least recently used way
// otherwise.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the first invalid way, or the way with the largest
// recency. Ties go to the lowest way index.
func (e *LRUVictimFinder) FindVictim(set *Set) int {
	for i, slot := range set.Slots {
		if !slot.IsValid {
			return i
		}
	}

	victim := 0
	for i, slot := range set.Slots {
		if slot.Recency > set.Slots[victim].Recency {
			victim = i
		}
	}

	return victim
}

// FirstWayVictimFinder always replaces way 0. It serves direct-mapped caches,
// where a set has no other way to choose from.
type FirstWayVictimFinder struct {
}

// NewFirstWayVictimFinder creates a FirstWayVictimFinder.
func NewFirstWayVictimFinder() *FirstWayVictimFinder {
	return &FirstWayVictimFinder{}
}

// FindVictim returns 0.
func (e *FirstWayVictimFinder) FindVictim(_ *Set) int {
	return 0
}

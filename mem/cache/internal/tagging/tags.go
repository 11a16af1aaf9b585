// Package tagging keeps track of which memory lines occupy the slots of a
// cache.
package tagging

// TagArray stores the slots of one cache, organized in sets and ways.
type TagArray interface {
	NumSets() int
	NumWays() int

	// Lookup finds the valid slot in setID whose tag matches.
	Lookup(setID int, tag uint64) (Slot, bool)

	// GetSet returns the set so that victim finders can inspect it.
	GetSet(setID int) *Set

	// Update overwrites the slot at slot.SetID and slot.WayID.
	Update(slot Slot)

	// Visit marks a way as the most recently used one of its set.
	Visit(setID, wayID int)

	// Invalidate marks a slot as not holding any line.
	Invalidate(setID, wayID int)

	// Reset invalidates every slot.
	Reset()
}

// NewTagArray creates a TagArray with all slots invalid.
func NewTagArray(numSets, numWays int) TagArray {
	t := &tagArrayImpl{
		numSets: numSets,
		numWays: numWays,
	}

	t.Reset()

	return t
}

// A Slot is one line-sized storage unit of a cache.
type Slot struct {
	SetID int
	WayID int

	Tag     uint64
	IsValid bool

	// ResidentAddress is the last address installed in the slot. It is kept
	// for display only and never takes part in hit detection.
	ResidentAddress uint64

	// Recency counts how many other accesses to the set happened since this
	// slot was last used. Larger is older.
	Recency int
}

// A Set is the list of slots a line may be placed in.
type Set struct {
	Slots []Slot
}

type tagArrayImpl struct {
	numSets int
	numWays int
	sets    []Set
}

func (t *tagArrayImpl) NumSets() int {
	return t.numSets
}

func (t *tagArrayImpl) NumWays() int {
	return t.numWays
}

func (t *tagArrayImpl) Lookup(setID int, tag uint64) (Slot, bool) {
	for _, slot := range t.sets[setID].Slots {
		if slot.IsValid && slot.Tag == tag {
			return slot, true
		}
	}

	return Slot{}, false
}

func (t *tagArrayImpl) GetSet(setID int) *Set {
	return &t.sets[setID]
}

func (t *tagArrayImpl) Update(slot Slot) {
	t.sets[slot.SetID].Slots[slot.WayID] = slot
}

// Visit resets the recency of the visited way and ages every other valid way
// of the same set.
func (t *tagArrayImpl) Visit(setID, wayID int) {
	set := &t.sets[setID]

	for i := range set.Slots {
		if i == wayID || !set.Slots[i].IsValid {
			continue
		}

		set.Slots[i].Recency++
	}

	set.Slots[wayID].Recency = 0
}

func (t *tagArrayImpl) Invalidate(setID, wayID int) {
	slot := &t.sets[setID].Slots[wayID]
	slot.IsValid = false
	slot.Recency = 0
}

func (t *tagArrayImpl) Reset() {
	t.sets = make([]Set, t.numSets)
	for i := 0; i < t.numSets; i++ {
		t.sets[i].Slots = make([]Slot, t.numWays)
		for j := 0; j < t.numWays; j++ {
			t.sets[i].Slots[j] = Slot{
				SetID: i,
				WayID: j,
			}
		}
	}
}

package cache

// A SlotSnapshot is a copy of one slot, detached from the level.
type SlotSnapshot struct {
	Set             int    `json:"set"`
	Way             int    `json:"way"`
	Valid           bool   `json:"valid"`
	Tag             uint64 `json:"tag"`
	ResidentAddress uint64 `json:"resident_address"`
	Recency         int    `json:"recency"`
}

// A LevelSnapshot is a copy of a whole level for display.
type LevelSnapshot struct {
	Name     string           `json:"name"`
	Strategy string           `json:"strategy"`
	NumSets  int              `json:"num_sets"`
	NumWays  int              `json:"num_ways"`
	Sets     [][]SlotSnapshot `json:"sets"`
}

// Snapshot copies the current content of the level.
func (l *Level) Snapshot() LevelSnapshot {
	s := LevelSnapshot{
		Name:     l.name,
		Strategy: l.strategy.String(),
		NumSets:  l.tags.NumSets(),
		NumWays:  l.tags.NumWays(),
		Sets:     make([][]SlotSnapshot, l.tags.NumSets()),
	}

	for i := range s.Sets {
		slots := l.tags.GetSet(i).Slots
		s.Sets[i] = make([]SlotSnapshot, len(slots))

		for j, slot := range slots {
			s.Sets[i][j] = SlotSnapshot{
				Set:             slot.SetID,
				Way:             slot.WayID,
				Valid:           slot.IsValid,
				Tag:             slot.Tag,
				ResidentAddress: slot.ResidentAddress,
				Recency:         slot.Recency,
			}
		}
	}

	return s
}

// NumValid returns the number of valid slots in the snapshot.
func (s LevelSnapshot) NumValid() int {
	n := 0

	for _, set := range s.Sets {
		for _, slot := range set {
			if slot.Valid {
				n++
			}
		}
	}

	return n
}

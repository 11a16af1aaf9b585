// Package cache models one level of a cache under a given mapping strategy.
//
// A Level only tracks which lines are resident. It does not store data and
// has no notion of time; the hierarchy that owns it decides when to look up,
// touch and fill.
package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/addressing"
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
)

// A Location identifies a slot and the tag it holds or would hold.
type Location struct {
	SetIndex int
	Way      int
	Tag      uint64
}

// A Line describes a valid slot.
type Line struct {
	Location

	// BlockAddress is the first byte of the line held in the slot.
	BlockAddress uint64

	// ResidentAddress is the address whose miss brought the line in.
	ResidentAddress uint64
}

// A Level is a single cache with a fixed geometry.
type Level struct {
	name         string
	strategy     Strategy
	geometry     addressing.Geometry
	tags         tagging.TagArray
	victimFinder tagging.VictimFinder
}

// Name returns the name given at build time.
func (l *Level) Name() string {
	return l.name
}

// Strategy returns the mapping strategy of the level.
func (l *Level) Strategy() Strategy {
	return l.strategy
}

// Geometry returns the address layout of the level.
func (l *Level) Geometry() addressing.Geometry {
	return l.geometry
}

// NumSets returns the number of sets.
func (l *Level) NumSets() int {
	return l.tags.NumSets()
}

// NumWays returns the number of ways per set.
func (l *Level) NumWays() int {
	return l.tags.NumWays()
}

// Decode splits addr with this level's geometry.
func (l *Level) Decode(addr uint64) addressing.Decomposition {
	return l.geometry.Decode(addr)
}

// Lookup returns where addr is resident. It does not change the level.
func (l *Level) Lookup(addr uint64) (Location, bool) {
	setID := l.geometry.SetIndex(addr)
	tag := l.geometry.Tag(addr)

	slot, found := l.tags.Lookup(setID, tag)
	if !found {
		return Location{}, false
	}

	return Location{SetIndex: setID, Way: slot.WayID, Tag: tag}, true
}

// Contains returns true if the line holding addr is resident.
func (l *Level) Contains(addr uint64) bool {
	_, found := l.Lookup(addr)
	return found
}

// Touch records a use of a way for LRU replacement. Direct-mapped levels have
// nothing to record.
func (l *Level) Touch(setIndex, way int) {
	l.mustBeValidSlot(setIndex, way)

	if !l.strategy.IsAssociative() {
		return
	}

	l.tags.Visit(setIndex, way)
}

// SelectVictim returns the way of setIndex that the next fill overwrites.
func (l *Level) SelectVictim(setIndex int) int {
	l.mustBeValidSlot(setIndex, 0)

	return l.victimFinder.FindVictim(l.tags.GetSet(setIndex))
}

// Place returns the slot a fill of addr would use, without changing
// anything.
func (l *Level) Place(addr uint64) Location {
	setID := l.geometry.SetIndex(addr)

	return Location{
		SetIndex: setID,
		Way:      l.SelectVictim(setID),
		Tag:      l.geometry.Tag(addr),
	}
}

// Occupant returns the line held in a slot, if the slot is valid.
func (l *Level) Occupant(setIndex, way int) (Line, bool) {
	l.mustBeValidSlot(setIndex, way)

	slot := l.tags.GetSet(setIndex).Slots[way]
	if !slot.IsValid {
		return Line{}, false
	}

	return l.lineOf(slot), true
}

// Install stores a line in a slot, replacing whatever was there.
func (l *Level) Install(setIndex, way int, tag uint64, addr uint64) {
	l.mustBeValidSlot(setIndex, way)

	slot := l.tags.GetSet(setIndex).Slots[way]
	slot.Tag = tag
	slot.IsValid = true
	slot.ResidentAddress = addr
	l.tags.Update(slot)

	l.Touch(setIndex, way)
}

// Invalidate drops the line holding addr. It returns the dropped line, if
// there was one.
func (l *Level) Invalidate(addr uint64) (Line, bool) {
	loc, found := l.Lookup(addr)
	if !found {
		return Line{}, false
	}

	line := l.lineOf(l.tags.GetSet(loc.SetIndex).Slots[loc.Way])
	l.tags.Invalidate(loc.SetIndex, loc.Way)

	return line, true
}

// ResidentLines lists every valid slot, by set and then by way.
func (l *Level) ResidentLines() []Line {
	var lines []Line

	for i := 0; i < l.tags.NumSets(); i++ {
		for _, slot := range l.tags.GetSet(i).Slots {
			if slot.IsValid {
				lines = append(lines, l.lineOf(slot))
			}
		}
	}

	return lines
}

// Reset invalidates every slot.
func (l *Level) Reset() {
	l.tags.Reset()
}

func (l *Level) lineOf(slot tagging.Slot) Line {
	return Line{
		Location: Location{
			SetIndex: slot.SetID,
			Way:      slot.WayID,
			Tag:      slot.Tag,
		},
		BlockAddress:    l.geometry.LineAddress(slot.Tag, slot.SetID),
		ResidentAddress: slot.ResidentAddress,
	}
}

func (l *Level) mustBeValidSlot(setIndex, way int) {
	if setIndex < 0 || setIndex >= l.tags.NumSets() ||
		way < 0 || way >= l.tags.NumWays() {
		panic(fmt.Sprintf("%s: slot (%d, %d) out of range (%d sets, %d ways)",
			l.name, setIndex, way, l.tags.NumSets(), l.tags.NumWays()))
	}
}

// Package addressing splits byte addresses into the fields a cache uses to
// place them.
package addressing

// Geometry is the part of a cache layout that address decoding depends on.
type Geometry struct {
	NumSets      int
	WordsPerLine int
	WordSize     int
}

// A Decomposition is an address broken into its cache fields.
type Decomposition struct {
	Tag        uint64
	SetIndex   int
	WordOffset int
	ByteOffset int
}

// BlockSize returns the number of bytes in one line.
func (g Geometry) BlockSize() uint64 {
	return uint64(g.WordsPerLine) * uint64(g.WordSize)
}

// SetSpan returns the number of bytes covered by one pass over all sets.
func (g Geometry) SetSpan() uint64 {
	return uint64(g.NumSets) * g.BlockSize()
}

// Decode splits addr into tag, set, word and byte fields.
func (g Geometry) Decode(addr uint64) Decomposition {
	return Decomposition{
		Tag:        g.Tag(addr),
		SetIndex:   g.SetIndex(addr),
		WordOffset: int(addr / uint64(g.WordSize) % uint64(g.WordsPerLine)),
		ByteOffset: int(addr % uint64(g.WordSize)),
	}
}

// SetIndex returns the set that addr maps to.
func (g Geometry) SetIndex(addr uint64) int {
	return int(addr / g.BlockSize() % uint64(g.NumSets))
}

// Tag returns the tag stored for addr.
func (g Geometry) Tag(addr uint64) uint64 {
	return addr / g.SetSpan()
}

// Encode rebuilds the address that Decode split into d.
func (g Geometry) Encode(d Decomposition) uint64 {
	return d.Tag*g.SetSpan() +
		uint64(d.SetIndex)*g.BlockSize() +
		uint64(d.WordOffset)*uint64(g.WordSize) +
		uint64(d.ByteOffset)
}

// BlockNumber returns the index of the line that holds addr, counted from
// address zero.
func (g Geometry) BlockNumber(addr uint64) uint64 {
	return addr / g.BlockSize()
}

// BlockAddress returns the first byte of the line that holds addr.
func (g Geometry) BlockAddress(addr uint64) uint64 {
	return g.BlockNumber(addr) * g.BlockSize()
}

// LineAddress returns the first byte of the line identified by a tag and a
// set in this geometry.
func (g Geometry) LineAddress(tag uint64, setIndex int) uint64 {
	return g.Encode(Decomposition{Tag: tag, SetIndex: setIndex})
}

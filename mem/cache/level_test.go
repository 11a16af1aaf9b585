package cache

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/config"
)

func mustBuild(b Builder, name string) *Level {
	l, err := b.Build(name)
	Expect(err).NotTo(HaveOccurred())

	return l
}

// fill looks addr up and, on a miss, installs it at the victim way. It
// returns true on a hit.
func fill(l *Level, addr uint64) bool {
	loc, hit := l.Lookup(addr)
	if hit {
		l.Touch(loc.SetIndex, loc.Way)
		return true
	}

	p := l.Place(addr)
	l.Install(p.SetIndex, p.Way, p.Tag, addr)

	return false
}

var _ = Describe("Builder", func() {
	It("should lay out a direct-mapped level", func() {
		l := mustBuild(MakeBuilder().
			WithStrategy(DirectMapped).
			WithNumEntries(16).
			WithAssociativity(4), "DM.L1")

		Expect(l.Name()).To(Equal("DM.L1"))
		Expect(l.NumSets()).To(Equal(16))
		Expect(l.NumWays()).To(Equal(1))
		Expect(l.Geometry().BlockSize()).To(Equal(uint64(16)))
	})

	It("should lay out a fully associative level", func() {
		l := mustBuild(MakeBuilder().
			WithStrategy(FullyAssociative).
			WithNumEntries(64), "FA.L2")

		Expect(l.NumSets()).To(Equal(1))
		Expect(l.NumWays()).To(Equal(64))
	})

	It("should lay out a set-associative level", func() {
		l := mustBuild(MakeBuilder().
			WithStrategy(SetAssociative).
			WithNumEntries(64).
			WithAssociativity(4), "SA.L2")

		Expect(l.NumSets()).To(Equal(16))
		Expect(l.NumWays()).To(Equal(4))
	})

	DescribeTable("should reject invalid geometry",
		func(b Builder) {
			l, err := b.Build("bad")

			Expect(l).To(BeNil())
			Expect(errors.Is(err, config.ErrInvalidConfiguration)).To(BeTrue())
		},
		Entry("no entries", MakeBuilder().WithNumEntries(0)),
		Entry("negative word size", MakeBuilder().WithWordSize(-4)),
		Entry("no words per line", MakeBuilder().WithWordsPerLine(0)),
		Entry("no ways", MakeBuilder().WithAssociativity(0)),
		Entry("partial set", MakeBuilder().
			WithNumEntries(16).WithAssociativity(3)),
	)

	It("should ignore associativity for direct-mapped levels", func() {
		_, err := MakeBuilder().
			WithStrategy(DirectMapped).
			WithNumEntries(16).
			WithAssociativity(3).
			Build("dm")

		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Level", func() {
	Context("direct-mapped", func() {
		var l *Level

		BeforeEach(func() {
			l = mustBuild(MakeBuilder().
				WithStrategy(DirectMapped).
				WithNumEntries(16), "DM.L1")
		})

		It("should miss on an empty level", func() {
			_, hit := l.Lookup(0x40)
			Expect(hit).To(BeFalse())
		})

		It("should hit after install", func() {
			loc := l.Place(0x48)
			Expect(loc).To(Equal(Location{SetIndex: 4, Way: 0, Tag: 0}))

			l.Install(loc.SetIndex, loc.Way, loc.Tag, 0x48)

			found, hit := l.Lookup(0x4C)
			Expect(hit).To(BeTrue())
			Expect(found).To(Equal(loc))
		})

		It("should overwrite on conflict", func() {
			Expect(fill(l, 0x040)).To(BeFalse())
			Expect(fill(l, 0x140)).To(BeFalse())

			Expect(l.Contains(0x040)).To(BeFalse())
			Expect(l.Contains(0x140)).To(BeTrue())
		})

		It("should not track recency", func() {
			fill(l, 0x040)
			l.Touch(4, 0)

			Expect(l.Snapshot().Sets[4][0].Recency).To(Equal(0))
		})

		It("should panic on a slot out of range", func() {
			Expect(func() { l.Touch(16, 0) }).To(Panic())
			Expect(func() { l.Install(0, 1, 0, 0) }).To(Panic())
		})
	})

	Context("fully associative with 16 slots", func() {
		var l *Level

		BeforeEach(func() {
			l = mustBuild(MakeBuilder().
				WithStrategy(FullyAssociative).
				WithNumEntries(16), "FA.L1")
		})

		It("should take 16 compulsory misses and then only hit", func() {
			for i := uint64(0); i < 16; i++ {
				Expect(fill(l, i*16)).To(BeFalse())
			}

			for i := uint64(0); i < 16; i++ {
				Expect(fill(l, i*16)).To(BeTrue())
			}

			Expect(l.Snapshot().NumValid()).To(Equal(16))
		})

		It("should evict the least recently used line", func() {
			for i := uint64(0); i < 16; i++ {
				fill(l, i*16)
			}

			Expect(fill(l, 16*16)).To(BeFalse())

			Expect(l.Contains(0)).To(BeFalse())
			for i := uint64(1); i <= 16; i++ {
				Expect(l.Contains(i * 16)).To(BeTrue())
			}
		})

		It("should keep a re-touched line", func() {
			for i := uint64(0); i < 16; i++ {
				fill(l, i*16)
			}
			Expect(fill(l, 0)).To(BeTrue())

			fill(l, 16*16)

			Expect(l.Contains(0)).To(BeTrue())
			Expect(l.Contains(16)).To(BeFalse())
		})

		It("should reuse the lowest freed way when two ways are free", func() {
			for i := uint64(0); i < 16; i++ {
				fill(l, i*16)
			}
			l.Invalidate(3 * 16)
			l.Invalidate(9 * 16)

			Expect(l.SelectVictim(0)).To(Equal(3))

			fill(l, 100*16)
			Expect(l.SelectVictim(0)).To(Equal(9))
		})

		It("should return the dropped line on invalidate", func() {
			fill(l, 0x7C)

			line, ok := l.Invalidate(0x70)

			Expect(ok).To(BeTrue())
			Expect(line.BlockAddress).To(Equal(uint64(0x70)))
			Expect(line.ResidentAddress).To(Equal(uint64(0x7C)))

			_, ok = l.Invalidate(0x70)
			Expect(ok).To(BeFalse())
		})
	})

	Context("set-associative", func() {
		var l *Level

		BeforeEach(func() {
			l = mustBuild(MakeBuilder().
				WithStrategy(SetAssociative).
				WithNumEntries(16).
				WithAssociativity(2), "SA.L1")
		})

		It("should hold two conflicting lines in one set", func() {
			fill(l, 0x000)
			fill(l, 0x080)

			Expect(l.Contains(0x000)).To(BeTrue())
			Expect(l.Contains(0x080)).To(BeTrue())
		})

		It("should evict the older of the two ways", func() {
			fill(l, 0x000)
			fill(l, 0x080)
			fill(l, 0x000)
			fill(l, 0x100)

			Expect(l.Contains(0x000)).To(BeTrue())
			Expect(l.Contains(0x080)).To(BeFalse())
			Expect(l.Contains(0x100)).To(BeTrue())
		})

		It("should age only the touched set", func() {
			fill(l, 0x000)
			fill(l, 0x010)
			fill(l, 0x080)

			s := l.Snapshot()
			Expect(s.Sets[0][0].Recency).To(Equal(1))
			Expect(s.Sets[0][1].Recency).To(Equal(0))
			Expect(s.Sets[1][0].Recency).To(Equal(0))
		})

		It("should list resident lines", func() {
			fill(l, 0x004)
			fill(l, 0x098)

			lines := l.ResidentLines()

			Expect(lines).To(HaveLen(2))
			Expect(lines[0].BlockAddress).To(Equal(uint64(0x000)))
			Expect(lines[1].BlockAddress).To(Equal(uint64(0x090)))
		})

		It("should report the occupant of a slot", func() {
			fill(l, 0x084)

			line, ok := l.Occupant(0, 0)
			Expect(ok).To(BeTrue())
			Expect(line.Tag).To(Equal(uint64(1)))

			_, ok = l.Occupant(0, 1)
			Expect(ok).To(BeFalse())
		})

		It("should reset", func() {
			fill(l, 0x000)

			l.Reset()

			Expect(l.Contains(0x000)).To(BeFalse())
		})
	})
})

var _ = Describe("Strategy", func() {
	DescribeTable("should parse names",
		func(name string, expected Strategy) {
			s, err := ParseStrategy(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(expected))
		},
		Entry("direct", "direct", DirectMapped),
		Entry("fully", "Fully", FullyAssociative),
		Entry("set", "set-associative", SetAssociative),
	)

	It("should reject unknown names", func() {
		_, err := ParseStrategy("skewed")
		Expect(err).To(HaveOccurred())
	})

	It("should print names", func() {
		Expect(SetAssociative.String()).To(Equal("SetAssociative"))
		Expect(Strategy(7).String()).To(Equal("Strategy(7)"))
	})
})

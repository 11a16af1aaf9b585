package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tags", func() {
	var (
		tags *tagArrayImpl
	)

	BeforeEach(func() {
		tags = NewTagArray(8, 4).(*tagArrayImpl)
	})

	It("should start with every slot invalid", func() {
		Expect(tags.NumSets()).To(Equal(8))
		Expect(tags.NumWays()).To(Equal(4))

		for i := 0; i < 8; i++ {
			set := tags.GetSet(i)
			Expect(set.Slots).To(HaveLen(4))
			for j, slot := range set.Slots {
				Expect(slot.IsValid).To(BeFalse())
				Expect(slot.SetID).To(Equal(i))
				Expect(slot.WayID).To(Equal(j))
			}
		}
	})

	It("should lookup", func() {
		tags.Update(Slot{SetID: 3, WayID: 2, Tag: 0x10, IsValid: true})

		slot, ok := tags.Lookup(3, 0x10)

		Expect(ok).To(BeTrue())
		Expect(slot.WayID).To(Equal(2))
	})

	It("should not find a tag in another set", func() {
		tags.Update(Slot{SetID: 3, WayID: 2, Tag: 0x10, IsValid: true})

		_, ok := tags.Lookup(4, 0x10)

		Expect(ok).To(BeFalse())
	})

	It("should not find an invalid slot", func() {
		tags.Update(Slot{SetID: 3, WayID: 2, Tag: 0x10, IsValid: false})

		slot, ok := tags.Lookup(3, 0x10)

		Expect(ok).To(BeFalse())
		Expect(slot).To(BeZero())
	})

	It("should age other valid ways when visiting", func() {
		tags.Update(Slot{SetID: 1, WayID: 0, Tag: 1, IsValid: true})
		tags.Update(Slot{SetID: 1, WayID: 1, Tag: 2, IsValid: true, Recency: 4})
		tags.Update(Slot{SetID: 1, WayID: 2, Tag: 3, IsValid: true, Recency: 2})

		tags.Visit(1, 1)

		set := tags.GetSet(1)
		Expect(set.Slots[0].Recency).To(Equal(1))
		Expect(set.Slots[1].Recency).To(Equal(0))
		Expect(set.Slots[2].Recency).To(Equal(3))
		Expect(set.Slots[3].Recency).To(Equal(0))
	})

	It("should invalidate", func() {
		tags.Update(Slot{SetID: 1, WayID: 0, Tag: 1, IsValid: true, Recency: 3})

		tags.Invalidate(1, 0)

		_, ok := tags.Lookup(1, 1)
		Expect(ok).To(BeFalse())
		Expect(tags.GetSet(1).Slots[0].Recency).To(Equal(0))
	})

	It("should reset", func() {
		tags.Update(Slot{SetID: 1, WayID: 0, Tag: 1, IsValid: true})

		tags.Reset()

		_, ok := tags.Lookup(1, 1)
		Expect(ok).To(BeFalse())
	})
})

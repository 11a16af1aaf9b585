package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingHook struct {
	positions []*HookPos
}

func (h *countingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
}

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
	)

	BeforeEach(func() {
		base = &HookableBase{}
	})

	It("should register hooks", func() {
		base.AcceptHook(&countingHook{})
		base.AcceptHook(&countingHook{})

		Expect(base.NumHooks()).To(Equal(2))
		Expect(base.Hooks()).To(HaveLen(2))
	})

	It("should panic on a duplicated hook", func() {
		h := &countingHook{}
		base.AcceptHook(h)

		Expect(func() { base.AcceptHook(h) }).To(Panic())
	})

	It("should invoke hooks in registration order", func() {
		var order []int
		base.AcceptHook(HookFunc(func(HookCtx) { order = append(order, 1) }))
		base.AcceptHook(HookFunc(func(HookCtx) { order = append(order, 2) }))

		base.InvokeHook(HookCtx{Pos: HookPosAccess})

		Expect(order).To(Equal([]int{1, 2}))
	})

	It("should pass the position to the hook", func() {
		h := &countingHook{}
		base.AcceptHook(h)

		base.InvokeHook(HookCtx{Pos: HookPosAccess})
		base.InvokeHook(HookCtx{Pos: HookPosEvict})

		Expect(h.positions).To(Equal([]*HookPos{HookPosAccess, HookPosEvict}))
	})
})

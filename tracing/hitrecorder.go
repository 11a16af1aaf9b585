package tracing

import (
	"sync"

	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// A Hit is an access that did not reach memory.
type Hit struct {
	Seq      int
	Address  uint64
	ServedBy hierarchy.ServedBy
}

// HitRecorder is a hook that keeps the hits of a hierarchy, in order.
type HitRecorder struct {
	mu       sync.Mutex
	accesses int
	hits     []Hit
}

// NewHitRecorder creates an empty HitRecorder.
func NewHitRecorder() *HitRecorder {
	return &HitRecorder{}
}

// Func records the access if it was a hit.
func (r *HitRecorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != hooking.HookPosAccess {
		return
	}

	o, ok := ctx.Item.(hierarchy.AccessOutcome)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.accesses++

	if !o.IsHit() {
		return
	}

	r.hits = append(r.hits, Hit{
		Seq:      r.accesses,
		Address:  o.Address,
		ServedBy: o.ServedBy,
	})
}

// Hits returns the hits recorded so far.
func (r *HitRecorder) Hits() []Hit {
	r.mu.Lock()
	defer r.mu.Unlock()

	hits := make([]Hit, len(r.hits))
	copy(hits, r.hits)

	return hits
}

// Accesses returns the number of accesses observed.
func (r *HitRecorder) Accesses() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.accesses
}

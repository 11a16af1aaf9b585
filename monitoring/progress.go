package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/cachesim/sim/hooking"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

type progressBarView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

func (b *ProgressBar) view() progressBarView {
	b.Lock()
	defer b.Unlock()

	return progressBarView{
		ID:        b.ID,
		Name:      b.Name,
		StartTime: b.StartTime,
		Total:     b.Total,
		Finished:  b.Finished,
	}
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// A ProgressHook moves a progress bar forward by one on every access.
type ProgressHook struct {
	bar *ProgressBar
}

// NewProgressHook creates a hook that advances bar.
func NewProgressHook(bar *ProgressBar) *ProgressHook {
	return &ProgressHook{bar: bar}
}

// Func advances the bar if the hook is invoked after an access.
func (h *ProgressHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != hooking.HookPosAccess {
		return
	}

	h.bar.IncrementFinished(1)
}

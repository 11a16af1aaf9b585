// Package tracing provides hooks that observe the accesses of a cache
// hierarchy.
package tracing

import (
	"log"

	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// NamedHookable is a hookable domain that has a name.
type NamedHookable interface {
	hooking.Hookable
	Name() string
}

func domainName(ctx hooking.HookCtx) string {
	named, ok := ctx.Domain.(NamedHookable)
	if !ok {
		return ""
	}

	return named.Name()
}

// AccessLogger is a hook that prints every access, and optionally every
// eviction, into a logger.
type AccessLogger struct {
	*log.Logger

	logEvictions bool
}

// NewAccessLogger returns a new AccessLogger which will write into the
// logger.
func NewAccessLogger(logger *log.Logger) *AccessLogger {
	return &AccessLogger{Logger: logger}
}

// WithEvictions makes the logger print evictions too.
func (h *AccessLogger) WithEvictions() *AccessLogger {
	h.logEvictions = true
	return h
}

// Func writes the access information into the logger.
func (h *AccessLogger) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case hooking.HookPosAccess:
		o, ok := ctx.Item.(hierarchy.AccessOutcome)
		if !ok {
			return
		}

		h.logAccess(domainName(ctx), o)
	case hooking.HookPosEvict:
		e, ok := ctx.Item.(hierarchy.Eviction)
		if !ok || !h.logEvictions {
			return
		}

		h.Printf("evict, %s, 0x%04x, set %d, way %d, %s",
			e.Level, e.BlockAddress, e.SetIndex, e.Way, e.Reason)
	}
}

func (h *AccessLogger) logAccess(name string, o hierarchy.AccessOutcome) {
	p := o.L1
	level := "L1"

	if o.ServedBy != hierarchy.ServedByL1 {
		p = o.L2
		level = "L2"
	}

	h.Printf("access, %s, 0x%04x, %s, %s set %d way %d tag 0x%x, cost %d",
		name, o.Address, o.ServedBy, level, p.SetIndex, p.Way, p.Tag, o.Cost)
}

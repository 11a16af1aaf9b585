package tracing

import (
	"sync"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// Table names used by the DBTracer.
const (
	AccessTable   = "access_outcomes"
	EvictionTable = "evictions"
)

// AccessEntry is a row of the access_outcomes table.
type AccessEntry struct {
	RunID     string
	Hierarchy string
	Seq       int
	Address   uint64
	ServedBy  string
	Cost      int
	L1Set     int
	L1Way     int
	L1Tag     uint64
	L2Probed  bool
	L2Set     int
	L2Way     int
	L2Tag     uint64
	Evictions int
}

// EvictionEntry is a row of the evictions table. Seq is the access that
// caused the eviction.
type EvictionEntry struct {
	RunID           string
	Hierarchy       string
	Seq             int
	Level           string
	SetIndex        int
	Way             int
	BlockAddress    uint64
	ResidentAddress uint64
	Reason          string
}

// DBTracer is a hook that stores accesses and evictions into a data
// recorder. One DBTracer can be shared by several hierarchies.
type DBTracer struct {
	mu       sync.Mutex
	runID    string
	recorder datarecording.DataRecorder
	seq      map[string]int
}

// NewDBTracer creates the tracer tables in recorder.
func NewDBTracer(
	recorder datarecording.DataRecorder,
	runID string,
) *DBTracer {
	recorder.CreateTable(AccessTable, AccessEntry{})
	recorder.CreateTable(EvictionTable, EvictionEntry{})

	return &DBTracer{
		runID:    runID,
		recorder: recorder,
		seq:      make(map[string]int),
	}
}

// Func records the item of the hook.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	name := domainName(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	switch item := ctx.Item.(type) {
	case hierarchy.Eviction:
		t.recordEviction(name, item)
	case hierarchy.AccessOutcome:
		t.recordAccess(name, item)
	}
}

func (t *DBTracer) recordEviction(name string, e hierarchy.Eviction) {
	t.recorder.InsertData(EvictionTable, EvictionEntry{
		RunID:           t.runID,
		Hierarchy:       name,
		Seq:             t.seq[name] + 1,
		Level:           e.Level,
		SetIndex:        e.SetIndex,
		Way:             e.Way,
		BlockAddress:    e.BlockAddress,
		ResidentAddress: e.ResidentAddress,
		Reason:          e.Reason.String(),
	})
}

func (t *DBTracer) recordAccess(name string, o hierarchy.AccessOutcome) {
	t.seq[name]++

	t.recorder.InsertData(AccessTable, AccessEntry{
		RunID:     t.runID,
		Hierarchy: name,
		Seq:       t.seq[name],
		Address:   o.Address,
		ServedBy:  o.ServedBy.String(),
		Cost:      o.Cost,
		L1Set:     o.L1.SetIndex,
		L1Way:     o.L1.Way,
		L1Tag:     o.L1.Tag,
		L2Probed:  o.L2Probed,
		L2Set:     o.L2.SetIndex,
		L2Way:     o.L2.Way,
		L2Tag:     o.L2.Tag,
		Evictions: len(o.Evictions),
	})
}

package analysis

import (
	"context"
	"slices"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/hierarchy"
)

// StatisticsTable is the table RecordStatistics writes to.
const StatisticsTable = "run_statistics"

// StatisticsEntry is a row of the run_statistics table.
type StatisticsEntry struct {
	RunID            string
	Pattern          string
	Name             string
	TotalAccesses    int
	L1Hits           int
	L2Hits           int
	MemoryAccesses   int
	TotalCost        int
	L1HitRatio       float64
	L2HitRatio       float64
	L2GlobalHitRatio float64
	HitRatio         float64
	AMAT             float64
	AverageCost      float64
	L1Cost           int
	L2Cost           int
	MemoryCost       int
}

// Statistics converts the entry back to run statistics.
func (e StatisticsEntry) Statistics() RunStatistics {
	return RunStatistics{
		Name: e.Name,
		Costs: hierarchy.Costs{
			L1:     e.L1Cost,
			L2:     e.L2Cost,
			Memory: e.MemoryCost,
		},
		TotalAccesses:    e.TotalAccesses,
		L1Hits:           e.L1Hits,
		L2Hits:           e.L2Hits,
		MemoryAccesses:   e.MemoryAccesses,
		TotalCost:        e.TotalCost,
		L1HitRatio:       e.L1HitRatio,
		L2HitRatio:       e.L2HitRatio,
		L2GlobalHitRatio: e.L2GlobalHitRatio,
		HitRatio:         e.HitRatio,
		AMAT:             e.AMAT,
		AverageCost:      e.AverageCost,
	}
}

// RecordStatistics writes results into the run_statistics table, creating the
// table on first use. pattern may be empty for explicit address streams.
func RecordStatistics(
	recorder datarecording.DataRecorder,
	runID, pattern string,
	results []RunStatistics,
) {
	if !slices.Contains(recorder.ListTables(), StatisticsTable) {
		recorder.CreateTable(StatisticsTable, StatisticsEntry{})
	}

	for _, r := range results {
		recorder.InsertData(StatisticsTable, StatisticsEntry{
			RunID:            runID,
			Pattern:          pattern,
			Name:             r.Name,
			TotalAccesses:    r.TotalAccesses,
			L1Hits:           r.L1Hits,
			L2Hits:           r.L2Hits,
			MemoryAccesses:   r.MemoryAccesses,
			TotalCost:        r.TotalCost,
			L1HitRatio:       r.L1HitRatio,
			L2HitRatio:       r.L2HitRatio,
			L2GlobalHitRatio: r.L2GlobalHitRatio,
			HitRatio:         r.HitRatio,
			AMAT:             r.AMAT,
			AverageCost:      r.AverageCost,
			L1Cost:           r.Costs.L1,
			L2Cost:           r.Costs.L2,
			MemoryCost:       r.Costs.Memory,
		})
	}

	recorder.Flush()
}

// LoadStatistics reads recorded statistics back. An empty runID loads every
// run.
func LoadStatistics(
	ctx context.Context,
	reader datarecording.DataReader,
	runID string,
) ([]StatisticsEntry, error) {
	reader.MapTable(StatisticsTable, StatisticsEntry{})

	params := datarecording.QueryParams{OrderBy: "rowid"}
	if runID != "" {
		params.Where = "RunID = ?"
		params.Args = []any{runID}
	}

	rows, _, err := reader.Query(ctx, StatisticsTable, params)
	if err != nil {
		return nil, err
	}

	entries := make([]StatisticsEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, *row.(*StatisticsEntry))
	}

	return entries, nil
}

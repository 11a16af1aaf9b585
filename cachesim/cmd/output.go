package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/tracing"
)

const hitDisplayLimit = 10

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

func printStatistics(w io.Writer, results []analysis.RunStatistics) {
	tw := newTabWriter(w)

	fmt.Fprintln(tw, "NAME\tACCESSES\tL1 HITS\tL1 HIT %\tL2 HITS\t"+
		"L2 HIT %\tL2 GLOBAL %\tMEMORY\tHIT %\tAMAT\tTOTAL COST")

	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%d\t%s\t%s\t%d\t%s\t%.2f\t%d\n",
			r.Name, r.TotalAccesses,
			r.L1Hits, percent(r.L1HitRatio),
			r.L2Hits, percent(r.L2HitRatio), percent(r.L2GlobalHitRatio),
			r.MemoryAccesses, percent(r.HitRatio),
			r.AMAT, r.TotalCost)
	}

	tw.Flush()
}

// printContents lists the valid slots of a level.
func printContents(w io.Writer, level cache.LevelSnapshot) {
	fmt.Fprintf(w, "%s contents (%d of %d slots valid):\n",
		level.Name, level.NumValid(), level.NumSets*level.NumWays)

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "SET\tWAY\tTAG\tADDRESS\tRECENCY")

	for _, set := range level.Sets {
		for _, slot := range set {
			if !slot.Valid {
				continue
			}

			fmt.Fprintf(tw, "0x%x\t%d\t0x%x\t0x%04x\t%d\n",
				slot.Set, slot.Way, slot.Tag, slot.ResidentAddress,
				slot.Recency)
		}
	}

	tw.Flush()
	fmt.Fprintln(w)
}

// printHits shows the first hits of a run with the fields of the level that
// served them.
func printHits(w io.Writer, h *hierarchy.Hierarchy, hits []tracing.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No cache hits recorded during this simulation.")
		return
	}

	shown := min(len(hits), hitDisplayLimit)
	fmt.Fprintf(w, "Summary of cache hits (showing first %d out of %d hits):\n",
		shown, len(hits))

	l1, l2 := h.Levels()
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "#\tADDRESS\tCACHE\tTAG\tSET\tWORD\tBYTE")

	for _, hit := range hits[:shown] {
		level := l1
		if hit.ServedBy == hierarchy.ServedByL2 {
			level = l2
		}

		d := level.Decode(hit.Address)
		fmt.Fprintf(tw, "%d\t0x%04x\t%s\t0x%x\t0x%x\t0x%x\t0x%x\n",
			hit.Seq, hit.Address, hit.ServedBy,
			d.Tag, d.SetIndex, d.WordOffset, d.ByteOffset)
	}

	tw.Flush()

	if len(hits) > shown {
		fmt.Fprintf(w, "... and %d more hits (not shown)\n", len(hits)-shown)
	}

	fmt.Fprintln(w)
}

// printOutcome describes one access in full, for step-by-step runs.
func printOutcome(w io.Writer, seq int, o hierarchy.AccessOutcome) {
	fmt.Fprintf(w, "Memory access #%d: 0x%04x\n", seq, o.Address)

	fmt.Fprintf(w, "  L1 %s: tag 0x%x set 0x%x way %d\n",
		hitOrMiss(o.ServedBy == hierarchy.ServedByL1),
		o.L1.Tag, o.L1.SetIndex, o.L1.Way)

	if o.L2Probed {
		fmt.Fprintf(w, "  L2 %s: tag 0x%x set 0x%x way %d\n",
			hitOrMiss(o.ServedBy == hierarchy.ServedByL2),
			o.L2.Tag, o.L2.SetIndex, o.L2.Way)
	}

	for _, e := range o.Evictions {
		fmt.Fprintf(w, "  %s: block 0x%04x %s\n", e.Level, e.BlockAddress,
			e.Reason)
	}

	fmt.Fprintf(w, "  Served by %s, cost %d cycles\n", o.ServedBy, o.Cost)
}

func hitOrMiss(hit bool) string {
	if hit {
		return "hit"
	}

	return "miss"
}

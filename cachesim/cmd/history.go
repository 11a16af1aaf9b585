package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/datarecording"
)

var historyRunID string

var historyCmd = &cobra.Command{
	Use:   "history file.sqlite3",
	Short: "Print the statistics stored by a recorded run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		entries, err := analysis.LoadStatistics(
			cmd.Context(), reader, historyRunID)
		if err != nil {
			return err
		}

		printHistory(cmd.OutOrStdout(), entries)

		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyRunID, "run", "",
		"only show the run with this ID")
	rootCmd.AddCommand(historyCmd)
}

func printHistory(w io.Writer, entries []analysis.StatisticsEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No statistics recorded.")
		return
	}

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "RUN\tPATTERN\tNAME\tACCESSES\tL1 HIT %\tL2 HIT %\t"+
		"HIT %\tAMAT\tTOTAL COST")

	for _, e := range entries {
		pattern := e.Pattern
		if pattern == "" {
			pattern = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%.2f\t%d\n",
			e.RunID, pattern, e.Name, e.TotalAccesses,
			percent(e.L1HitRatio), percent(e.L2HitRatio),
			percent(e.HitRatio), e.AMAT, e.TotalCost)
	}

	tw.Flush()
}

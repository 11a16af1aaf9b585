package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/simulation"
	"github.com/sarchlab/cachesim/workload"
)

var (
	compareStream   streamFlags
	compareParallel bool
	compareCSV      string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the same address stream on all three mapping strategies.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		stream, pattern, err := compareStream.stream(cmd, cfg)
		if err != nil {
			return err
		}

		s, err := newSimulation(cfg)
		if err != nil {
			return err
		}

		runner, err := s.NewComparisonRunner()
		if err != nil {
			return err
		}

		if compareParallel {
			runner.WithParallel()
		}

		attachLogger(runner.Runners()...)

		hierarchies := runner.Hierarchies()
		done := s.TrackProgress("comparison",
			len(stream)*len(hierarchies), hierarchies...)
		comparison, err := runner.Run(stream)
		done()

		if err != nil {
			return err
		}

		comparison.Pattern = pattern
		printComparison(cmd.OutOrStdout(), comparison)

		err = writeCSV(compareCSV, cmd.OutOrStdout(), comparison.Statistics())
		if err != nil {
			return err
		}

		s.RecordResults(pattern, comparison.Statistics())

		return finish(cmd, s)
	},
}

var (
	patternsCount int
	patternsSeed  uint64
	patternsCSV   string
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Compare the strategies on sequential, random and repeated streams.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		s, err := newSimulation(cfg)
		if err != nil {
			return err
		}

		flags := streamFlags{count: patternsCount, seed: patternsSeed}

		var dones []func()

		comparisons, err := s.ComparePatterns(patternsCount, flags.rng(cmd),
			func(p workload.Pattern, runner *simulation.ComparisonRunner) {
				attachLogger(runner.Runners()...)

				hierarchies := runner.Hierarchies()
				dones = append(dones, s.TrackProgress(p.String(),
					patternsCount*len(hierarchies), hierarchies...))
			})

		for _, done := range dones {
			done()
		}

		if err != nil {
			return err
		}

		var all []analysis.RunStatistics

		for _, c := range comparisons {
			printComparison(cmd.OutOrStdout(), c)
			s.RecordResults(c.Pattern, c.Statistics())
			all = append(all, c.Statistics()...)
		}

		err = writeCSV(patternsCSV, cmd.OutOrStdout(), all)
		if err != nil {
			return err
		}

		return finish(cmd, s)
	},
}

func init() {
	compareStream.register(compareCmd)
	compareCmd.Flags().BoolVar(&compareParallel, "parallel", false,
		"run each strategy in its own goroutine")
	compareCmd.Flags().StringVar(&compareCSV, "csv", "",
		"write the statistics as CSV to a file, or - for stdout")
	rootCmd.AddCommand(compareCmd)

	patternsCmd.Flags().IntVarP(&patternsCount, "count", "n", 1000,
		"number of accesses per pattern")
	patternsCmd.Flags().Uint64Var(&patternsSeed, "seed", 0,
		"seed of the address generator, time based if not set")
	patternsCmd.Flags().StringVar(&patternsCSV, "csv", "",
		"write the statistics as CSV to a file, or - for stdout")
	rootCmd.AddCommand(patternsCmd)
}

func printComparison(w io.Writer, c simulation.Comparison) {
	if c.Pattern != "" {
		fmt.Fprintf(w, "%s pattern:\n", c.Pattern)
	}

	printStatistics(w, c.Statistics())

	fastest := c.Fastest()
	fmt.Fprintf(w, "Lowest average access time: %s (%.2f cycles)\n\n",
		fastest.Strategy, fastest.Statistics.AverageCost)
}

// writeCSV writes results to path. An empty path writes nothing and "-"
// writes to stdout.
func writeCSV(path string, stdout io.Writer, results []analysis.RunStatistics) error {
	switch path {
	case "":
		return nil
	case "-":
		return analysis.WriteCSV(stdout, results)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = analysis.WriteCSV(f, results)
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

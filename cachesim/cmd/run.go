package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/sim/hooking"
	"github.com/sarchlab/cachesim/tracing"
)

var (
	runStream   streamFlags
	runStrategy string
	runStep     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an address stream on a single mapping strategy.",
	Long: "`run --strategy set --count 50` feeds 50 random addresses to a " +
		"set-associative hierarchy and prints the final cache contents, the " +
		"hits and the statistics. With --step, every access is described " +
		"and the run waits for Enter before the next one.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := cache.ParseStrategy(runStrategy)
		if err != nil {
			return err
		}

		stream, pattern, err := runStream.stream(cmd, cfg)
		if err != nil {
			return err
		}

		s, err := newSimulation(cfg)
		if err != nil {
			return err
		}

		runner, err := s.NewRunner(st)
		if err != nil {
			return err
		}

		h := runner.Hierarchy()
		hits := tracing.NewHitRecorder()
		h.AcceptHook(hits)
		attachLogger(runner)

		if runStep {
			h.AcceptHook(newStepper(cmd.InOrStdin(), cmd.OutOrStdout()))
		}

		done := s.TrackProgress(h.Name(), len(stream), h)
		stats, err := runner.Run(stream)
		done()

		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printArchitecture(out, cfg, h)

		snapshot := h.Snapshot()
		printContents(out, snapshot.L1)
		printContents(out, snapshot.L2)
		printHits(out, h, hits.Hits())
		printStatistics(out, []analysis.RunStatistics{stats})

		s.RecordResults(pattern, []analysis.RunStatistics{stats})

		return finish(cmd, s)
	},
}

func init() {
	runStream.register(runCmd)
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "direct",
		"mapping strategy: direct, fully or set")
	runCmd.Flags().BoolVar(&runStep, "step", false,
		"describe every access and wait for Enter before the next one")
	rootCmd.AddCommand(runCmd)
}

func printArchitecture(w io.Writer, cfg config.Config, h *hierarchy.Hierarchy) {
	l1, l2 := h.Levels()

	fmt.Fprintf(w, "%s hierarchy, inclusive (L2 holds every L1 line)\n",
		h.Strategy())
	fmt.Fprintf(w, "  L1: %d sets x %d ways, %d-byte lines\n",
		l1.NumSets(), l1.NumWays(), cfg.BlockSize())
	fmt.Fprintf(w, "  L2: %d sets x %d ways, %d-byte lines\n\n",
		l2.NumSets(), l2.NumWays(), cfg.BlockSize())
}

// A stepper describes every access and then blocks until a line is read.
// Once the input is exhausted, it stops waiting.
type stepper struct {
	in   *bufio.Reader
	out  io.Writer
	seq  int
	done bool
}

func newStepper(in io.Reader, out io.Writer) *stepper {
	return &stepper{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (s *stepper) Func(ctx hooking.HookCtx) {
	if ctx.Pos != hooking.HookPosAccess {
		return
	}

	o, ok := ctx.Item.(hierarchy.AccessOutcome)
	if !ok {
		return
	}

	s.seq++
	printOutcome(s.out, s.seq, o)

	if s.done {
		fmt.Fprintln(s.out)
		return
	}

	fmt.Fprint(s.out, "Press Enter to continue to the next access...")

	_, err := s.in.ReadString('\n')
	if err != nil {
		s.done = true
	}

	fmt.Fprintln(s.out)
}

package cmd

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/workload"
)

// streamFlags selects the address stream of a run.
type streamFlags struct {
	count     int
	seed      uint64
	pattern   string
	addresses []string
}

func (f *streamFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.count, "count", "n", 20,
		"number of accesses to generate")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0,
		"seed of the address generator, time based if not set")
	cmd.Flags().StringVar(&f.pattern, "pattern", "random",
		"access pattern: sequential, random or repeated")
	cmd.Flags().StringSliceVar(&f.addresses, "addresses", nil,
		"explicit addresses, overriding --pattern and --count")
}

// rng returns a generator seeded from --seed. The seed is printed when it is
// drawn from the clock so that the run can be repeated.
func (f *streamFlags) rng(cmd *cobra.Command) *rand.Rand {
	seed := f.seed
	if !cmd.Flags().Changed("seed") {
		seed = uint64(time.Now().UnixNano())
		fmt.Fprintf(os.Stderr, "Using seed %d\n", seed)
	}

	return rand.New(rand.NewPCG(seed, seed))
}

// stream builds the address stream and the name of the pattern it follows.
// Explicit addresses have no pattern name.
func (f *streamFlags) stream(
	cmd *cobra.Command,
	cfg config.Config,
) (stream []uint64, pattern string, err error) {
	if len(f.addresses) > 0 {
		stream, err = workload.Parse(f.addresses)
		return stream, "", err
	}

	p, err := workload.ParsePattern(f.pattern)
	if err != nil {
		return nil, "", err
	}

	stream, err = workload.Generate(p, f.count, cfg, f.rng(cmd))

	return stream, p.String(), err
}

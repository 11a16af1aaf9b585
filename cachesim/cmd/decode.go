package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/workload"
)

var decodeCmd = &cobra.Command{
	Use:   "decode address...",
	Short: "Show how addresses split into tag, set, word and byte fields.",
	Long: "`decode 0x0a57` prints the fields of address 0x0a57 in L1 and L2 " +
		"under every mapping strategy.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		addresses, err := workload.Parse(args)
		if err != nil {
			return err
		}

		err = workload.Validate(addresses, cfg)
		if err != nil {
			return err
		}

		return printDecodings(cmd.OutOrStdout(), cfg, addresses)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func printDecodings(w io.Writer, cfg config.Config, addresses []uint64) error {
	hierarchies := make([]*hierarchy.Hierarchy, 0, len(cache.Strategies()))

	for _, s := range cache.Strategies() {
		h, err := hierarchy.New(s, cfg)
		if err != nil {
			return err
		}

		hierarchies = append(hierarchies, h)
	}

	fmt.Fprintf(w, "Word size %d bytes, %d words per line, %d-byte lines\n\n",
		cfg.WordSize, cfg.WordsPerLine, cfg.BlockSize())

	for _, addr := range addresses {
		fmt.Fprintf(w, "Address 0x%04x (block 0x%04x):\n",
			addr, addr/uint64(cfg.BlockSize())*uint64(cfg.BlockSize()))

		tw := newTabWriter(w)
		fmt.Fprintln(tw, "STRATEGY\tLEVEL\tSETS\tWAYS\tTAG\tSET\tWORD\tBYTE")

		for _, h := range hierarchies {
			l1, l2 := h.Levels()

			for _, level := range []*cache.Level{l1, l2} {
				d := level.Decode(addr)
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t0x%x\t0x%x\t0x%x\t0x%x\n",
					h.Strategy(), levelName(level, l1),
					level.NumSets(), level.NumWays(),
					d.Tag, d.SetIndex, d.WordOffset, d.ByteOffset)
			}
		}

		tw.Flush()
		fmt.Fprintln(w)
	}

	return nil
}

func levelName(level, l1 *cache.Level) string {
	if level == l1 {
		return "L1"
	}

	return "L2"
}

// Package cmd provides the command-line interface for cachesim.
package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/simulation"
	"github.com/sarchlab/cachesim/tracing"
)

var (
	configFile  string
	envFile     string
	recordOn    bool
	monitorOn   bool
	monitorPort int
	openBrowser bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim simulates a two-level inclusive cache hierarchy.",
	Long: `cachesim simulates a two-level inclusive cache hierarchy under ` +
		`direct-mapped, fully associative and set-associative mapping, and ` +
		`compares the hit ratios and access times the strategies achieve ` +
		`on the same address stream.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "",
		"YAML file with the cache configuration")
	flags.StringVar(&envFile, "env-file", ".env",
		"dotenv file with CACHESIM_* overrides")
	flags.BoolVar(&recordOn, "record", false,
		"record accesses and statistics into a SQLite file")
	flags.BoolVar(&monitorOn, "monitor", false,
		"serve the monitoring web page while simulating")
	flags.IntVar(&monitorPort, "monitor-port", 0,
		"port of the monitoring server, random if not set")
	flags.BoolVar(&openBrowser, "open-browser", false,
		"open the monitoring page in a browser")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"log every access and eviction to stderr")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadConfig starts from the defaults or the config file, then applies the
// dotenv file and the environment.
func loadConfig() (config.Config, error) {
	err := config.LoadDotEnv(envFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := config.Default()
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return config.Config{}, err
		}
	}

	return config.ApplyEnv(cfg, os.LookupEnv)
}

func newSimulation(cfg config.Config) (*simulation.Simulation, error) {
	if monitorPort != 0 && !monitorOn {
		return nil, errors.New("--monitor-port requires --monitor")
	}

	if openBrowser && !monitorOn {
		return nil, errors.New("--open-browser requires --monitor")
	}

	b := simulation.MakeBuilder().WithConfig(cfg)

	if recordOn {
		b = b.WithDataRecording()
	}

	if monitorOn {
		b = b.WithMonitoring()
		if monitorPort != 0 {
			b = b.WithMonitorPort(monitorPort)
		}
	}

	s, err := b.Build()
	if err != nil {
		return nil, err
	}

	if openBrowser {
		err = s.GetMonitor().OpenInBrowser()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %v\n", err)
		}
	}

	return s, nil
}

// attachLogger logs the accesses of the runners to stderr if --verbose is
// set.
func attachLogger(runners ...*simulation.Runner) {
	if !verbose {
		return
	}

	logger := tracing.NewAccessLogger(log.New(os.Stderr, "", 0)).
		WithEvictions()
	for _, r := range runners {
		r.Hierarchy().AcceptHook(logger)
	}
}

// finish closes the recorder and, if monitoring, keeps the server up until
// the user interrupts.
func finish(cmd *cobra.Command, s *simulation.Simulation) error {
	err := s.Terminate()
	if err != nil {
		return err
	}

	m := s.GetMonitor()
	if m == nil {
		return nil
	}

	fmt.Fprintf(os.Stderr,
		"Simulation finished. Monitoring continues at %s, "+
			"press Ctrl+C to exit.\n", m.URL())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	<-ctx.Done()

	return m.StopServer()
}

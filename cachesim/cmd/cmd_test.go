package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/workload"
)

func resetFlags() {
	configFile = ""
	envFile = ".env"
	recordOn = false
	monitorOn = false
	monitorPort = 0
	openBrowser = false
	verbose = false

	runStream = streamFlags{count: 20, pattern: "random"}
	runStrategy = "direct"
	runStep = false

	compareStream = streamFlags{count: 20, pattern: "random"}
	compareParallel = false
	compareCSV = ""

	patternsCount = 1000
	patternsSeed = 0
	patternsCSV = ""

	historyRunID = ""
}

func execute(stdin string, args ...string) (string, error) {
	resetFlags()

	out := new(bytes.Buffer)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.Execute()

	return out.String(), err
}

var _ = Describe("decode", func() {
	It("should print the fields of every strategy and level", func() {
		out, err := execute("", "decode", "0x0a57")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Address 0x0a57 (block 0x0a50)"))
		Expect(out).To(MatchRegexp(
			`DirectMapped\s+L1\s+16\s+1\s+0xa\s+0x5\s+0x1\s+0x3`))
		Expect(out).To(MatchRegexp(
			`DirectMapped\s+L2\s+64\s+1\s+0x2\s+0x25\s+0x1\s+0x3`))
		Expect(out).To(MatchRegexp(
			`FullyAssociative\s+L1\s+1\s+16\s+0xa5\s+0x0\s+0x1\s+0x3`))
		Expect(out).To(MatchRegexp(
			`SetAssociative\s+L1\s+8\s+2\s+0x14\s+0x5\s+0x1\s+0x3`))
		Expect(out).To(MatchRegexp(
			`SetAssociative\s+L2\s+16\s+4\s+0xa\s+0x5\s+0x1\s+0x3`))
	})

	It("should reject addresses outside the address space", func() {
		_, err := execute("", "decode", "0x1000")

		Expect(err).To(MatchError(workload.ErrAddressOutOfRange))
	})

	It("should use the environment configuration", func() {
		os.Setenv(config.EnvPrefix+"L1_ENTRIES", "0")
		DeferCleanup(os.Unsetenv, config.EnvPrefix+"L1_ENTRIES")

		_, err := execute("", "decode", "0x10")

		Expect(err).To(MatchError(config.ErrInvalidConfiguration))
	})
})

var _ = Describe("run", func() {
	It("should print contents, hits and statistics", func() {
		out, err := execute("", "run", "--strategy", "direct",
			"--addresses", "0x000,0x100,0x000")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("DirectMapped hierarchy"))
		Expect(out).To(ContainSubstring("L1: 16 sets x 1 ways"))
		Expect(out).To(ContainSubstring(
			"DirectMapped.L1 contents (1 of 16 slots valid)"))
		Expect(out).To(ContainSubstring(
			"DirectMapped.L2 contents (2 of 64 slots valid)"))
		Expect(out).To(ContainSubstring(
			"Summary of cache hits (showing first 1 out of 1 hits)"))
		Expect(out).To(MatchRegexp(`3\s+0x0000\s+L2\s+0x0\s+0x0`))
		Expect(out).To(MatchRegexp(
			`DirectMapped\s+3\s+0\s+0\.00%\s+1\s+33\.33%\s+33\.33%\s+2`))
	})

	It("should report a run without hits", func() {
		out, err := execute("", "run", "--strategy", "set",
			"--addresses", "0x000,0x010,0x020")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(
			"No cache hits recorded during this simulation."))
	})

	It("should describe every access when stepping", func() {
		out, err := execute("\n", "run", "--strategy", "fully", "--step",
			"--addresses", "0x000,0x004,0x100")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Memory access #1: 0x0000"))
		Expect(out).To(ContainSubstring("Memory access #2: 0x0004"))
		Expect(out).To(ContainSubstring("Memory access #3: 0x0100"))
		Expect(out).To(ContainSubstring("Served by L1, cost 1 cycles"))
		Expect(out).To(ContainSubstring("Press Enter to continue"))
	})

	It("should generate a stream from a pattern", func() {
		out, err := execute("", "run", "--strategy", "set",
			"--pattern", "sequential", "--count", "8", "--seed", "1")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`SetAssociative\s+8\s+6\s+75\.00%`))
	})

	It("should reject an address space smaller than a word", func() {
		os.Setenv(config.EnvPrefix+"ADDRESS_SPACE_SIZE", "2")
		DeferCleanup(os.Unsetenv, config.EnvPrefix+"ADDRESS_SPACE_SIZE")

		_, err := execute("", "run", "--pattern", "random",
			"--count", "3", "--seed", "1")

		Expect(err).To(MatchError(config.ErrInvalidConfiguration))
	})

	It("should reject an unknown strategy", func() {
		_, err := execute("", "run", "--strategy", "victim",
			"--addresses", "0x0")

		Expect(err).To(HaveOccurred())
	})

	It("should reject a monitor port without monitoring", func() {
		_, err := execute("", "run", "--monitor-port", "8080",
			"--addresses", "0x0")

		Expect(err).To(MatchError(ContainSubstring("requires --monitor")))
	})
})

var _ = Describe("compare", func() {
	It("should compare the strategies on the same stream", func() {
		out, err := execute("", "compare", "--addresses",
			strings.Repeat("0x000,0x100,", 9)+"0x000,0x100", "--csv", "-")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`DirectMapped\s+20\s+0\s+0\.00%\s+18`))
		Expect(out).To(MatchRegexp(`FullyAssociative\s+20\s+18\s+90\.00%`))
		Expect(out).To(MatchRegexp(`SetAssociative\s+20\s+18\s+90\.00%`))
		Expect(out).To(ContainSubstring(
			"Lowest average access time: FullyAssociative"))
		Expect(out).To(ContainSubstring("Name,Accesses,L1Hits,L2Hits"))
		Expect(out).To(ContainSubstring("DirectMapped,20,0,18,2,"))
	})

	It("should give the same table in parallel", func() {
		serial, err := execute("", "compare",
			"--pattern", "random", "--count", "200", "--seed", "9")
		Expect(err).NotTo(HaveOccurred())

		parallel, err := execute("", "compare", "--parallel",
			"--pattern", "random", "--count", "200", "--seed", "9")
		Expect(err).NotTo(HaveOccurred())

		Expect(parallel).To(Equal(serial))
	})

	It("should compare every pattern", func() {
		out, err := execute("", "patterns", "--count", "50", "--seed", "2")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Sequential pattern:"))
		Expect(out).To(ContainSubstring("Random pattern:"))
		Expect(out).To(ContainSubstring("Repeated pattern:"))
		Expect(out).To(MatchRegexp(`Repeated\.SetAssociative\s+50`))
	})
})

var _ = Describe("history", func() {
	BeforeEach(func() {
		wd, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())
		DeferCleanup(os.Chdir, wd)
	})

	It("should print recorded statistics", func() {
		_, err := execute("", "compare", "--record",
			"--addresses", "0x000,0x100,0x000")
		Expect(err).NotTo(HaveOccurred())

		files, err := filepath.Glob("cachesim_*.sqlite3")
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(HaveLen(1))

		out, err := execute("", "history", files[0])

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`-\s+DirectMapped\s+3\s+0\.00%`))
		Expect(out).To(ContainSubstring("FullyAssociative"))
		Expect(out).To(ContainSubstring("SetAssociative"))
	})

	It("should fail on a missing file", func() {
		_, err := execute("", "history",
			filepath.Join("missing", "run.sqlite3"))

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("printOutcome", func() {
	It("should describe an L2 hit with its evictions", func() {
		out := new(bytes.Buffer)

		printOutcome(out, 4, hierarchy.AccessOutcome{
			Address:  0x0100,
			ServedBy: hierarchy.ServedByL2,
			Cost:     11,
			L1: hierarchy.Placement{
				Location: cache.Location{SetIndex: 0, Way: 0, Tag: 1},
			},
			L2: hierarchy.Placement{
				Location: cache.Location{SetIndex: 16, Way: 0, Tag: 0},
			},
			L2Probed: true,
			Evictions: []hierarchy.Eviction{{
				Line:  cache.Line{BlockAddress: 0},
				Level: "DirectMapped.L1",
			}},
		})

		Expect(out.String()).To(Equal(
			"Memory access #4: 0x0100\n" +
				"  L1 miss: tag 0x1 set 0x0 way 0\n" +
				"  L2 hit: tag 0x0 set 0x10 way 0\n" +
				"  DirectMapped.L1: block 0x0000 replaced\n" +
				"  Served by L2, cost 11 cycles\n"))
	})
})

package analysis

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/sim/hooking"
)

var defaultCosts = hierarchy.Costs{L1: 1, L2: 10, Memory: 100}

func outcome(s hierarchy.ServedBy) hierarchy.AccessOutcome {
	return hierarchy.AccessOutcome{
		ServedBy: s,
		Cost:     defaultCosts.Of(s),
	}
}

var _ = Describe("Aggregator", func() {
	var a *Aggregator

	BeforeEach(func() {
		a = NewAggregator("test", defaultCosts)
	})

	It("should count outcomes by level", func() {
		a.Record(outcome(hierarchy.ServedByMemory))
		a.Record(outcome(hierarchy.ServedByMemory))
		a.Record(outcome(hierarchy.ServedByL1))
		a.Record(outcome(hierarchy.ServedByL2))

		Expect(a.Counts()).To(Equal(Counts{
			L1Hits:         1,
			L2Hits:         1,
			MemoryAccesses: 2,
			TotalCost:      111 + 111 + 1 + 11,
		}))
	})

	It("should fail to finalize without accesses", func() {
		_, err := a.Finalize(0)

		Expect(errors.Is(err, ErrNoAccesses)).To(BeTrue())
	})

	It("should fail when the counts do not add up", func() {
		a.Record(outcome(hierarchy.ServedByL1))

		_, err := a.Finalize(2)

		Expect(errors.Is(err, ErrAccessCountMismatch)).To(BeTrue())
	})

	It("should compute the ratios of a short run", func() {
		a.Record(outcome(hierarchy.ServedByMemory))
		a.Record(outcome(hierarchy.ServedByMemory))
		a.Record(outcome(hierarchy.ServedByL1))

		s, err := a.Finalize(3)

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name).To(Equal("test"))
		Expect(s.TotalAccesses).To(Equal(3))
		Expect(s.L1Misses()).To(Equal(2))
		Expect(s.TotalCost).To(Equal(223))
		Expect(s.L1HitRatio).To(BeNumerically("~", 1.0/3, 1e-9))
		Expect(s.L2HitRatio).To(BeNumerically("==", 0))
		Expect(s.L2GlobalHitRatio).To(BeNumerically("==", 0))
		Expect(s.HitRatio).To(BeNumerically("~", 1.0/3, 1e-9))
		Expect(s.AMAT).To(BeNumerically("~", 1+2.0/3*110, 1e-9))
		Expect(s.AverageCost).To(BeNumerically("~", 223.0/3, 1e-9))
	})

	It("should keep local and global L2 ratios apart", func() {
		a.Record(outcome(hierarchy.ServedByL1))
		a.Record(outcome(hierarchy.ServedByL1))
		a.Record(outcome(hierarchy.ServedByL2))
		a.Record(outcome(hierarchy.ServedByMemory))

		s, err := a.Current()

		Expect(err).NotTo(HaveOccurred())
		Expect(s.L2HitRatio).To(BeNumerically("~", 0.5, 1e-9))
		Expect(s.L2GlobalHitRatio).To(BeNumerically("~", 0.25, 1e-9))
	})

	It("should not divide by zero when every access hits L1", func() {
		a.Record(outcome(hierarchy.ServedByL1))

		s, err := a.Finalize(1)

		Expect(err).NotTo(HaveOccurred())
		Expect(s.L2HitRatio).To(BeNumerically("==", 0))
		Expect(s.AMAT).To(BeNumerically("==", 1))
	})

	It("should only count access hooks", func() {
		a.Func(hooking.HookCtx{
			Pos:  hooking.HookPosEvict,
			Item: hierarchy.Eviction{},
		})
		a.Func(hooking.HookCtx{
			Pos:  hooking.HookPosAccess,
			Item: outcome(hierarchy.ServedByL2),
		})

		Expect(a.Counts().Accesses()).To(Equal(1))
	})

	It("should reset", func() {
		a.Record(outcome(hierarchy.ServedByL1))
		a.Reset()

		_, err := a.Current()

		Expect(errors.Is(err, ErrNoAccesses)).To(BeTrue())
	})

	DescribeTable("should bound AMAT by the cheapest and the dearest access",
		func(s cache.Strategy) {
			cfg := config.Default()
			h, err := hierarchy.New(s, cfg)
			Expect(err).NotTo(HaveOccurred())

			agg := NewAggregatorFor(h)
			rng := rand.New(rand.NewPCG(3, 5))
			for i := 0; i < 2000; i++ {
				h.Access(rng.Uint64N(512) * 4)
			}

			stats, err := agg.Finalize(2000)

			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Name).To(Equal(s.String()))
			Expect(stats.AMAT).To(BeNumerically(">=", 1))
			Expect(stats.AMAT).To(BeNumerically("<=", 111))
			Expect(stats.AMAT).To(BeNumerically("~", stats.AverageCost, 1e-9))
		},
		Entry("direct-mapped", cache.DirectMapped),
		Entry("fully associative", cache.FullyAssociative),
		Entry("set-associative", cache.SetAssociative),
	)
})

var _ = Describe("WriteCSV", func() {
	It("should write a header and one row per result", func() {
		buf := new(bytes.Buffer)
		results := []RunStatistics{
			{
				Name:          "DirectMapped",
				TotalAccesses: 3,
				L1Hits:        1,
				TotalCost:     223,
				L1HitRatio:    0.5,
				AMAT:          74.25,
			},
		}

		err := WriteCSV(buf, results)

		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(HavePrefix("Name,Accesses,L1Hits"))
		Expect(lines[1]).To(Equal(
			"DirectMapped,3,1,0,0,0.500000,0.000000,0.000000,0.000000," +
				"74.250000,223"))
	})
})

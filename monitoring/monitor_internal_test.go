package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/hierarchy"
)

var _ = Describe("Monitor", func() {
	var (
		m   *Monitor
		h   *hierarchy.Hierarchy
		agg *analysis.Aggregator
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		var err error

		m = NewMonitor()
		h, err = hierarchy.New(cache.SetAssociative, config.Default())
		Expect(err).NotTo(HaveOccurred())
		agg = analysis.NewAggregatorFor(h)

		m.RegisterHierarchy(h)
		m.RegisterAggregator(agg)
	})

	It("should ignore privileged ports", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
		Expect(m.URL()).To(BeEmpty())
		Expect(m.OpenInBrowser()).NotTo(Succeed())
	})

	It("should keep the lowest unprivileged port", func() {
		m.WithPortNumber(1000)

		Expect(m.portNumber).To(Equal(1000))
		Expect(m.listenAddress()).To(Equal(":1000"))
	})

	It("should listen on a random port by default", func() {
		Expect(m.listenAddress()).To(Equal(":0"))

		m.WithPortNumber(999)

		Expect(m.listenAddress()).To(Equal(":0"))
	})

	It("should list hierarchies and their levels", func() {
		rec := get("/api/list_components")

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{
			"SetAssociative", "SetAssociative.L1", "SetAssociative.L2",
		}))
	})

	It("should serialize a hierarchy and its levels", func() {
		h.Access(0x40)

		for _, name := range []string{
			"SetAssociative", "SetAssociative.L1", "SetAssociative.L2",
		} {
			rec := get("/api/component/" + name)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.Len()).To(BeNumerically(">", 0))
		}
	})

	It("should report unknown components", func() {
		rec := get("/api/component/Victim")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should reject malformed field requests", func() {
		rec := get("/api/field/" + url.PathEscape("{not json"))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report live statistics", func() {
		h.Access(0x00)
		h.Access(0x04)

		rec := get("/api/stats/SetAssociative")

		var stats analysis.RunStatistics
		Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
		Expect(stats.TotalAccesses).To(Equal(2))
		Expect(stats.L1Hits).To(Equal(1))
		Expect(stats.MemoryAccesses).To(Equal(1))
	})

	It("should report empty statistics before the first access", func() {
		rec := get("/api/stats/SetAssociative")

		var stats analysis.RunStatistics
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
		Expect(stats.Name).To(Equal("SetAssociative"))
		Expect(stats.TotalAccesses).To(Equal(0))
	})

	It("should list aggregators", func() {
		rec := get("/api/list_aggregators")

		Expect(rec.Body.String()).To(Equal(`["SetAssociative"]`))
	})

	It("should list and complete progress bars", func() {
		bar := m.CreateProgressBar("compare", 100)
		bar.IncrementFinished(4)
		bar.IncrementFinished(1)

		var views []progressBarView
		rec := get("/api/progress")
		Expect(json.Unmarshal(rec.Body.Bytes(), &views)).To(Succeed())
		Expect(views).To(HaveLen(1))
		Expect(views[0].ID).To(Equal(bar.ID))
		Expect(views[0].Finished).To(Equal(uint64(5)))
		Expect(views[0].Total).To(Equal(uint64(100)))

		m.CompleteProgressBar(bar)

		rec = get("/api/progress")
		Expect(rec.Body.String()).To(Equal("[]"))
	})

	It("should report process resources", func() {
		rec := get("/api/resource")

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the web page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("cachesim monitor"))
	})

	It("should start and stop the server", func() {
		m.StartServer()

		Expect(m.URL()).To(HavePrefix("http://localhost:"))

		rsp, err := http.Get(m.URL() + "/api/list_aggregators")
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		Expect(m.StopServer()).To(Succeed())
	})
})

var _ = Describe("ProgressHook", func() {
	It("should advance the bar on accesses only", func() {
		h, err := hierarchy.New(cache.DirectMapped, config.Default())
		Expect(err).NotTo(HaveOccurred())

		bar := NewMonitor().CreateProgressBar("run", 3)
		h.AcceptHook(NewProgressHook(bar))

		h.Access(0x000)
		h.Access(0x100)
		h.Access(0x000)

		Expect(bar.view().Finished).To(Equal(uint64(3)))
	})
})

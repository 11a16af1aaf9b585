// Package monitoring serves the live state of cache hierarchies over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/monitoring/web"
)

// Monitor turns a running simulation into a server that reports the content
// of the caches, the statistics so far and the progress of the run.
type Monitor struct {
	portNumber int
	listener   net.Listener

	lock        sync.Mutex
	hierarchies []*hierarchy.Hierarchy
	aggregators []*analysis.Aggregator

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

const minPortNumber = 1000

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < minPortNumber {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterHierarchy registers a hierarchy whose levels can be inspected.
func (m *Monitor) RegisterHierarchy(h *hierarchy.Hierarchy) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.hierarchies = append(m.hierarchies, h)
}

// RegisterAggregator registers an aggregator whose statistics are reported.
func (m *Monitor) RegisterAggregator(a *analysis.Aggregator) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.aggregators = append(m.aggregators, a)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	fServer := http.FileServer(web.GetAssets())
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/list_aggregators", m.listAggregators)
	r.HandleFunc("/api/stats/{name}", m.reportStatistics)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	listener, err := net.Listen("tcp", m.listenAddress())
	dieOnErr(err)

	m.listener = listener

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.URL())

	r := m.router()

	go func() {
		err := http.Serve(listener, r)
		if !errors.Is(err, net.ErrClosed) {
			dieOnErr(err)
		}
	}()
}

func (m *Monitor) listenAddress() string {
	if m.portNumber < minPortNumber {
		return ":0"
	}

	return ":" + strconv.Itoa(m.portNumber)
}

// URL returns the address of the server, or an empty string if the server
// has not been started.
func (m *Monitor) URL() string {
	if m.listener == nil {
		return ""
	}

	return fmt.Sprintf("http://localhost:%d",
		m.listener.Addr().(*net.TCPAddr).Port)
}

// OpenInBrowser opens the monitoring page with the default browser.
func (m *Monitor) OpenInBrowser() error {
	url := m.URL()
	if url == "" {
		return errors.New("monitoring server is not started")
	}

	return browser.OpenURL(url)
}

// StopServer closes the listener of the server.
func (m *Monitor) StopServer() error {
	if m.listener == nil {
		return nil
	}

	return m.listener.Close()
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	names := make([]string, 0, len(m.hierarchies)*3)
	for _, h := range m.hierarchies {
		l1, l2 := h.Levels()
		names = append(names, h.Name(), l1.Name(), l2.Name())
	}
	m.lock.Unlock()

	writeJSON(w, names)
}

// snapshotOf returns a copy of the named hierarchy or level.
func (m *Monitor) snapshotOf(name string) (any, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, h := range m.hierarchies {
		if h.Name() == name {
			s := h.Snapshot()
			return &s, true
		}

		l1, l2 := h.Levels()
		switch name {
		case l1.Name():
			s := h.Snapshot().L1
			return &s, true
		case l2.Name():
			s := h.Snapshot().L2
			return &s, true
		}
	}

	return nil, false
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	snapshot, found := m.snapshotOf(name)
	if !found {
		notFound(w, "Component not found")
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(snapshot)
	serializer.SetMaxDepth(3)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	snapshot, found := m.snapshotOf(req.CompName)
	if !found {
		notFound(w, "Component not found")
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(snapshot)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) listAggregators(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	names := make([]string, 0, len(m.aggregators))
	for _, a := range m.aggregators {
		names = append(names, a.Name())
	}
	m.lock.Unlock()

	writeJSON(w, names)
}

func (m *Monitor) findAggregator(name string) *analysis.Aggregator {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, a := range m.aggregators {
		if a.Name() == name {
			return a
		}
	}

	return nil
}

func (m *Monitor) reportStatistics(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	a := m.findAggregator(name)
	if a == nil {
		notFound(w, "Aggregator not found")
		return
	}

	stats, err := a.Current()
	if errors.Is(err, analysis.ErrNoAccesses) {
		stats = analysis.RunStatistics{Name: name}
	} else {
		dieOnErr(err)
	}

	writeJSON(w, stats)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	views := make([]progressBarView, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		views = append(views, b.view())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, views)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func notFound(w http.ResponseWriter, msg string) {
	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte(msg))
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}

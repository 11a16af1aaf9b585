// Package simulation drives address streams through cache hierarchies and
// wires the optional recorder and monitor around them.
package simulation

import (
	"math/rand/v2"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/hierarchy"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/tracing"
	"github.com/sarchlab/cachesim/workload"
)

// A Simulation owns the hierarchies of one program run, and the recorder and
// monitor that observe them.
type Simulation struct {
	id  string
	cfg config.Config

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	dbTracer     *tracing.DBTracer
	monitor      *monitoring.Monitor

	runners        []*Runner
	hierarchyIndex map[string]int
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the configuration shared by all hierarchies.
func (s *Simulation) Config() config.Config {
	return s.cfg
}

// GetDataRecorder returns the data recorder, or nil if nothing is recorded.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// NewRunner creates a runner of strategy st and registers its hierarchy.
func (s *Simulation) NewRunner(st cache.Strategy) (*Runner, error) {
	r, err := NewRunner(st, s.cfg)
	if err != nil {
		return nil, err
	}

	s.RegisterRunner(r)

	return r, nil
}

// NewComparisonRunner creates a comparison runner and registers its
// hierarchies.
func (s *Simulation) NewComparisonRunner() (*ComparisonRunner, error) {
	c, err := NewComparisonRunner(s.cfg)
	if err != nil {
		return nil, err
	}

	for _, r := range c.Runners() {
		s.RegisterRunner(r)
	}

	return c, nil
}

// ComparePatterns runs the pattern comparison with every hierarchy
// registered. setup may be nil.
func (s *Simulation) ComparePatterns(
	n int,
	rng *rand.Rand,
	setup PatternSetup,
) ([]Comparison, error) {
	return ComparePatterns(s.cfg, n, rng,
		func(p workload.Pattern, c *ComparisonRunner) {
			for _, r := range c.Runners() {
				s.RegisterRunner(r)
			}

			if setup != nil {
				setup(p, c)
			}
		})
}

// RegisterRunner attaches the recorder and the monitor to the hierarchy of r.
// Hierarchy names must be unique within a simulation.
func (s *Simulation) RegisterRunner(r *Runner) {
	h := r.Hierarchy()

	name := h.Name()
	if _, found := s.hierarchyIndex[name]; found {
		panic("hierarchy " + name + " already registered")
	}

	s.runners = append(s.runners, r)
	s.hierarchyIndex[name] = len(s.runners) - 1

	if s.dbTracer != nil {
		h.AcceptHook(s.dbTracer)
	}

	if s.monitor != nil {
		s.monitor.RegisterHierarchy(h)
		s.monitor.RegisterAggregator(r.Aggregator())
	}
}

// Hierarchies returns every registered hierarchy, in registration order.
func (s *Simulation) Hierarchies() []*hierarchy.Hierarchy {
	hierarchies := make([]*hierarchy.Hierarchy, 0, len(s.runners))
	for _, r := range s.runners {
		hierarchies = append(hierarchies, r.Hierarchy())
	}

	return hierarchies
}

// GetHierarchyByName returns the hierarchy with the given name.
func (s *Simulation) GetHierarchyByName(name string) (*hierarchy.Hierarchy, bool) {
	i, found := s.hierarchyIndex[name]
	if !found {
		return nil, false
	}

	return s.runners[i].Hierarchy(), true
}

// TrackProgress shows a progress bar that advances with every access of the
// given hierarchies. The returned function removes the bar. It does nothing
// if monitoring is off.
func (s *Simulation) TrackProgress(
	name string,
	total int,
	hierarchies ...*hierarchy.Hierarchy,
) (done func()) {
	if s.monitor == nil {
		return func() {}
	}

	bar := s.monitor.CreateProgressBar(name, uint64(total))
	hook := monitoring.NewProgressHook(bar)

	for _, h := range hierarchies {
		h.AcceptHook(hook)
	}

	return func() { s.monitor.CompleteProgressBar(bar) }
}

// RecordResults stores statistics under the run ID if recording is on.
func (s *Simulation) RecordResults(
	pattern string,
	results []analysis.RunStatistics,
) {
	if s.dataRecorder == nil {
		return
	}

	analysis.RecordStatistics(s.dataRecorder, s.id, pattern, results)
}

// Terminate writes the end of the run and closes the recorder. The
// monitoring server keeps running until the program exits.
func (s *Simulation) Terminate() error {
	if s.dataRecorder == nil {
		return nil
	}

	s.execRecorder.End()

	return s.dataRecorder.Close()
}

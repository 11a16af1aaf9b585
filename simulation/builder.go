package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg            config.Config
	recordOn       bool
	monitorOn      bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder. By default, nothing is recorded and no
// monitoring server is started.
func MakeBuilder() Builder {
	return Builder{
		cfg: config.Default(),
	}
}

// WithConfig sets the configuration of every hierarchy of the simulation.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithDataRecording makes the simulation store every access and the final
// statistics into a SQLite database.
func (b Builder) WithDataRecording() Builder {
	b.recordOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// It turns data recording on.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordOn = true
	b.outputFileName = filename

	return b
}

// WithMonitoring starts a monitoring server with the simulation.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the simulation. It fails if the configuration is invalid.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	err := b.cfg.Validate()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id:             xid.New().String(),
		cfg:            b.cfg,
		hierarchyIndex: make(map[string]int),
	}

	if b.recordOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "cachesim_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
		s.execRecorder = datarecording.NewExecRecorder(s.dataRecorder)
		s.execRecorder.Start(datarecording.ExecInfo{
			Property: "Run ID",
			Value:    s.id,
		})
		s.dbTracer = tracing.NewDBTracer(s.dataRecorder, s.id)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.StartServer()
	}

	return s, nil
}

package datarecording

import (
	"os"
	"strings"
	"time"
)

const execInfoTable = "exec_info"

const execTimeFormat = "2006-01-02 15:04:05.000000000"

// ExecInfo is one property of a program execution.
type ExecInfo struct {
	Property string
	Value    string
}

// An ExecRecorder records how and when the program was run into the
// exec_info table.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []ExecInfo
}

// NewExecRecorder creates the exec_info table in recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(execInfoTable, ExecInfo{})

	return &ExecRecorder{recorder: recorder}
}

// Start captures the start time, the command line and the working
// directory, followed by any extra properties such as a run ID.
func (e *ExecRecorder) Start(properties ...ExecInfo) {
	e.entries = append(e.entries, ExecInfo{
		Property: "Start Time",
		Value:    time.Now().Format(execTimeFormat),
	})

	e.entries = append(e.entries, ExecInfo{
		Property: "Command",
		Value:    strings.Join(os.Args, " "),
	})

	cwd, err := os.Getwd()
	if err == nil {
		e.entries = append(e.entries, ExecInfo{
			Property: "Working Directory",
			Value:    cwd,
		})
	}

	e.entries = append(e.entries, properties...)
}

// End writes the captured properties along with the end time.
func (e *ExecRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(execInfoTable, entry)
	}

	e.recorder.InsertData(execInfoTable, ExecInfo{
		Property: "End Time",
		Value:    time.Now().Format(execTimeFormat),
	})

	e.entries = nil

	e.recorder.Flush()
}

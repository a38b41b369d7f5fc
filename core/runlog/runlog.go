// Package runlog is a standardized event logging framework for
// pipeline runs.
package runlog

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// Recorder is a callback that stores events in an external datastore.
type Recorder func(e *Entry) error

// Logger captures stage events so a run can be audited after the fact.
type Logger struct {
	Record Recorder
}

// Entry is a single run log event.
type Entry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	RunID           string `json:"run_id,omitempty"`

	// Event is one of stage_start, stage_done, stage_failed, warning or
	// summary.
	Event string `json:"event"`

	Stage   string         `json:"stage,omitempty"`
	Message string         `json:"message,omitempty"`
	Path    string         `json:"path,omitempty"`
	Error   string         `json:"error,omitempty"`
	Counts  map[string]int `json:"counts,omitempty"`
}

// NewJSONLines creates a Logger that exports events in newline
// delimited JSON object format.
func NewJSONLines(w io.Writer) *Logger {
	return &Logger{
		Record: func(e *Entry) error {
			entry, err := json.Marshal(e)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// Discard creates a Logger that drops every event.
func Discard() *Logger {
	return &Logger{Record: func(*Entry) error { return nil }}
}

func (l *Logger) record(runID string, e *Entry) error {
	e.TimestampMicros = time.Now().UnixMicro()
	e.RunID = runID
	return l.Record(e)
}

// NewRun creates a logger with an attached run ID.
func (l *Logger) NewRun() *RunLogger {
	return &RunLogger{logger: l, runID: fmt.Sprintf("%d", rand.Uint64())}
}

// RunLogger logs events with a shared run ID.
type RunLogger struct {
	logger *Logger
	runID  string
}

func (r *RunLogger) StageStart(stage string) error {
	return r.logger.record(r.runID, &Entry{Event: "stage_start", Stage: stage})
}

func (r *RunLogger) StageDone(stage string, counts map[string]int) error {
	return r.logger.record(r.runID, &Entry{Event: "stage_done", Stage: stage, Counts: counts})
}

func (r *RunLogger) StageFailed(stage string, err error) error {
	return r.logger.record(r.runID, &Entry{Event: "stage_failed", Stage: stage, Error: err.Error()})
}

// Warn records a non-fatal problem with an optional file path.
func (r *RunLogger) Warn(stage, path, message string) error {
	return r.logger.record(r.runID, &Entry{Event: "warning", Stage: stage, Path: path, Message: message})
}

// Summary records the final per-split image counts.
func (r *RunLogger) Summary(counts map[string]int) error {
	return r.logger.record(r.runID, &Entry{Event: "summary", Counts: counts})
}

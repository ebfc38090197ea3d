// Package telemetry implements the channel registry, sampling, and
// binary/text record formats spec.md §4.6 (C6) and §6.3/§6.4 describe.
// Nothing in the retrieved corpus ships a telemetry serialisation library,
// so the binary and text writers here are a from-scratch port of the
// wire format documented in the original engine's TelemetryRecorder.cc:
// a header carrying field names behind a START_COLUMNS marker, followed by
// fixed-width rows each opened by a START_LINE marker.
package telemetry

import (
	"strconv"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// startColumnsMarker and startLineMarker are the literal tokens
// TelemetryRecorder.cc uses to delimit the header and each data row.
const (
	startColumnsMarker = "START_COLUMNS"
	startLineMarker    = "START_LINE"
)

// Options are the telemetry.* config group (spec.md §6.2): per-channel
// gates. The energy channel is always recorded; no sensor channels are
// registered.
type Options struct {
	LogConfiguration bool `yaml:"logConfiguration"`
	LogVelocity      bool `yaml:"logVelocity"`
	LogAcceleration  bool `yaml:"logAcceleration"`
	LogCommand       bool `yaml:"logCommand"`
}

// DefaultOptions logs everything.
func DefaultOptions() Options {
	return Options{LogConfiguration: true, LogVelocity: true, LogAcceleration: true, LogCommand: true}
}

// Sender registers fixed-name vector channels once at init time and
// samples them at every outer-loop iteration (spec.md §4.6). It implements
// stepper.Recorder.
type Sender struct {
	opts Options

	nq, nv, ncmd int
	fields       []string // column names, excluding the leading "time"
	rows         [][]float64

	// Constants recorded alongside the header, e.g. "nq=2".
	Constants map[string]string
}

// NewSender registers the q/v/a/u_cmd/energy channels per the gates in
// opts (spec.md §4.6 "fixed-name vector channels are registered once").
func NewSender(opts Options, nq, nv, ncmd int) *Sender {
	s := &Sender{opts: opts, nq: nq, nv: nv, ncmd: ncmd, Constants: map[string]string{}}
	if opts.LogConfiguration {
		for i := 0; i < nq; i++ {
			s.fields = append(s.fields, indexedName("q", i))
		}
	}
	if opts.LogVelocity {
		for i := 0; i < nv; i++ {
			s.fields = append(s.fields, indexedName("v", i))
		}
	}
	if opts.LogAcceleration {
		for i := 0; i < nv; i++ {
			s.fields = append(s.fields, indexedName("a", i))
		}
	}
	if opts.LogCommand {
		for i := 0; i < ncmd; i++ {
			s.fields = append(s.fields, indexedName("u_cmd", i))
		}
	}
	s.fields = append(s.fields, "energy")
	return s
}

func indexedName(prefix string, i int) string {
	return prefix + "." + strconv.Itoa(i)
}

// Header returns the column names, time first (spec.md §6.4 "column 0 =
// time").
func (s *Sender) Header() []string {
	header := make([]string, 0, len(s.fields)+1)
	header = append(header, "time")
	header = append(header, s.fields...)
	return header
}

// Sample records one telemetry row (spec.md §4.6 "at every outer-loop
// entry a sample is recorded"). It implements stepper.Recorder.
func (s *Sender) Sample(t float64, q, v, a, u dynamo.State, ucmd dynamo.Control, energy float64) {
	row := make([]float64, 0, len(s.fields)+1)
	row = append(row, t)
	if s.opts.LogConfiguration {
		row = append(row, q...)
	}
	if s.opts.LogVelocity {
		row = append(row, v...)
	}
	if s.opts.LogAcceleration {
		row = append(row, a...)
	}
	if s.opts.LogCommand {
		padded := make([]float64, s.ncmd)
		copy(padded, ucmd)
		row = append(row, padded...)
	}
	row = append(row, energy)
	s.rows = append(s.rows, row)
}

// Data returns the accumulated log for readout (spec.md §6.4
// getLogData): header plus an N×K matrix, column 0 = time.
func (s *Sender) Data() (header []string, matrix [][]float64) {
	return s.Header(), s.rows
}

// Reset clears all recorded rows without changing the registered channels
// (spec.md §4.7 "resets ... telemetry channels" is a rebind, done by
// constructing a new Sender; Reset here just drops accumulated data so the
// same Sender starts the next run with an empty log).
func (s *Sender) Reset() {
	s.rows = s.rows[:0]
}

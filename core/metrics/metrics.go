package metrics

import (
	"errors"
	"io"
	"time"
)

// PhaseEvent describes the outcome of one solve phase.
type PhaseEvent struct {
	RunID   string
	Catalog string
	// Phase is 1 for driver minimization and 2 for working time.
	Phase  int
	Mode   string
	Status string
	// Drivers is the pool size in phase 1 and the fixed count in phase 2.
	Drivers     int
	Objective   int64
	Bound       int64
	Variables   int
	Constraints int
	Branches    int64
	Conflicts   int64
	Duration    time.Duration
	Time        time.Time
}

// MetricsSink records solve phases for observability purposes.
type MetricsSink interface {
	RecordPhase(ev PhaseEvent) error
}

// RosterEvent summarizes the roster of one driver in a solved schedule.
type RosterEvent struct {
	RunID       string
	Catalog     string
	Driver      int
	Shifts      int
	DrivingTime int
	WorkingTime int
	Breaks      int
	Delay       int
	Time        time.Time
}

// RosterRecorder records per-driver roster summaries.
type RosterRecorder interface {
	RecordRoster(ev RosterEvent) error
}

// StateEvent captures an orchestrator state transition.
type StateEvent struct {
	RunID string
	From  string
	To    string
	Time  time.Time
}

// StateRecorder records orchestrator state transitions.
type StateRecorder interface {
	RecordState(ev StateEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPhase(PhaseEvent) error   { return nil }
func (NopSink) RecordRoster(RosterEvent) error { return nil }
func (NopSink) RecordState(StateEvent) error   { return nil }

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPhase forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPhase(ev PhaseEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPhase(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRoster forwards roster events to sinks supporting them.
func (m *MultiSink) RecordRoster(ev RosterEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RosterRecorder); ok {
			if err := rec.RecordRoster(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordState forwards state transitions to sinks supporting them.
func (m *MultiSink) RecordState(ev StateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(StateRecorder); ok {
			if err := rec.RecordState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink implementing io.Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

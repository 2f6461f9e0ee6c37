package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewsched/core/factory"
)

type recordSink struct {
	phases, rosters, states int
	err                     error
}

func (r *recordSink) RecordPhase(PhaseEvent) error {
	r.phases++
	return r.err
}

func (r *recordSink) RecordRoster(RosterEvent) error {
	r.rosters++
	return nil
}

type phaseOnly struct{ n int }

func (p *phaseOnly) RecordPhase(PhaseEvent) error {
	p.n++
	return nil
}

// TestMultiSink ensures events are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &phaseOnly{}
	m := NewMultiSink(s1, s2)
	require.NoError(t, m.RecordPhase(PhaseEvent{Phase: 1}))
	require.NoError(t, m.RecordRoster(RosterEvent{Driver: 0}))
	require.NoError(t, m.RecordState(StateEvent{From: "idle", To: "phase1_solving"}))
	assert.Equal(t, 1, s1.phases)
	assert.Equal(t, 1, s1.rosters)
	assert.Equal(t, 1, s2.n)
}

func TestMultiSinkStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	err := NewMultiSink(s1, s2).RecordPhase(PhaseEvent{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s2.phases)
}

func TestNewMetricsSink(t *testing.T) {
	s, err := NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	require.NoError(t, RegisterMetricsSink("test-record", func(map[string]any) (MetricsSink, error) {
		return &recordSink{}, nil
	}))
	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}})
	require.NoError(t, err)
	assert.IsType(t, &recordSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}, {Type: "test-record"}})
	require.NoError(t, err)
	multi, ok := s.(*MultiSink)
	require.True(t, ok)
	assert.Len(t, multi.Sinks, 2)

	_, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}, {Type: "missing"}})
	assert.ErrorContains(t, err, "metrics sink 1 (missing)")
}

type closingSink struct {
	phaseOnly
	closed bool
	err    error
}

func (c *closingSink) Close() error {
	c.closed = true
	return c.err
}

func TestMultiSinkClose(t *testing.T) {
	boom := errors.New("flush failed")
	c1 := &closingSink{}
	c2 := &closingSink{err: boom}
	err := NewMultiSink(c1, &phaseOnly{}, c2).Close()
	assert.ErrorIs(t, err, boom)
	assert.True(t, c1.closed)
	assert.True(t, c2.closed)
}

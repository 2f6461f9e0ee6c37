package metrics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/kilianp07/crewsched/core/metrics"
)

// PromSink records solve phases in Prometheus metrics.
type PromSink struct {
	duration    *prometheus.HistogramVec
	status      *prometheus.CounterVec
	drivers     *prometheus.GaugeVec
	variables   *prometheus.GaugeVec
	constraints *prometheus.GaugeVec
	working     *prometheus.HistogramVec
	states      *prometheus.CounterVec

	gatherer prometheus.Gatherer
	textfile string
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
// When textfile is set, Close writes the gathered metrics there in the
// node-exporter textfile format.
func NewPromSink(textfile string) (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, textfile)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer, textfile string) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{textfile: textfile, gatherer: prometheus.DefaultGatherer}
	if g, ok := reg.(prometheus.Gatherer); ok {
		s.gatherer = g
	}

	var err error
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crewsched_phase_duration_seconds",
		Help:    "Wall time of a solve phase",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"phase", "mode"})); err != nil {
		return nil, err
	}
	if s.status, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewsched_phase_status_total",
		Help: "Solve phases by final solver status",
	}, []string{"phase", "status"})); err != nil {
		return nil, err
	}
	if s.drivers, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crewsched_drivers",
		Help: "Drivers of the last phase: pool size in phase 1, fixed count in phase 2",
	}, []string{"catalog", "phase"})); err != nil {
		return nil, err
	}
	if s.variables, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crewsched_model_variables",
		Help: "Variables of the last model built per phase",
	}, []string{"catalog", "phase"})); err != nil {
		return nil, err
	}
	if s.constraints, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crewsched_model_constraints",
		Help: "Constraints of the last model built per phase",
	}, []string{"catalog", "phase"})); err != nil {
		return nil, err
	}
	if s.working, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crewsched_roster_working_minutes",
		Help:    "Working time of solved driver rosters",
		Buckets: prometheus.LinearBuckets(360, 60, 7),
	}, []string{"catalog"})); err != nil {
		return nil, err
	}
	if s.states, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewsched_state_transitions_total",
		Help: "Orchestrator state transitions by target state",
	}, []string{"to"})); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the existing collector when an identical one is already
// registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPhase observes the phase duration and model size.
func (s *PromSink) RecordPhase(ev coremetrics.PhaseEvent) error {
	phase := strconv.Itoa(ev.Phase)
	s.duration.WithLabelValues(phase, ev.Mode).Observe(ev.Duration.Seconds())
	s.status.WithLabelValues(phase, ev.Status).Inc()
	s.drivers.WithLabelValues(ev.Catalog, phase).Set(float64(ev.Drivers))
	s.variables.WithLabelValues(ev.Catalog, phase).Set(float64(ev.Variables))
	s.constraints.WithLabelValues(ev.Catalog, phase).Set(float64(ev.Constraints))
	return nil
}

// RecordRoster observes the working time of a roster.
func (s *PromSink) RecordRoster(ev coremetrics.RosterEvent) error {
	s.working.WithLabelValues(ev.Catalog).Observe(float64(ev.WorkingTime))
	return nil
}

// RecordState counts state transitions.
func (s *PromSink) RecordState(ev coremetrics.StateEvent) error {
	s.states.WithLabelValues(ev.To).Inc()
	return nil
}

// Handler exposes the gathered metrics over HTTP.
func (s *PromSink) Handler() http.Handler {
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
}

// Close writes the textfile, if configured.
func (s *PromSink) Close() error {
	if s.textfile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(s.textfile, s.gatherer)
}

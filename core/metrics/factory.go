package metrics

import (
	"fmt"

	"github.com/kilianp07/crewsched/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a sink factory for solve phase and roster events
// under the given metrics.sinks type name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink builds the sinks listed under metrics.sinks. No entry gives
// a NopSink and several entries are fanned out through a MultiSink.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	sinks := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %d (%s): %w", i, c.Type, err)
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}

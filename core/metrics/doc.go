// Package metrics defines the events emitted while solving and the sinks
// that record them. Sinks like PromSink and InfluxSink live in infra/metrics
// and register themselves by type name; NewMetricsSink builds a MultiSink
// automatically when several sinks are configured.
package metrics

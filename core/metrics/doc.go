// Package metrics defines the sinks analysis results are recorded to.
// Every sink implements MetricsSink and may implement any of the optional
// recorder interfaces. Implementations such as PromSink and InfluxSink live
// in infra/metrics and register themselves with RegisterMetricsSink.
// NewMetricsSink returns a MultiSink automatically when several sinks are
// configured.
package metrics

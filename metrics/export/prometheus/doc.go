// Package prometheus exposes session store metrics to Prometheus.
//
// [PrometheusExporter] is a collector: register it with any registry, or mount
// [PrometheusExporter.Handler] which serves it from a private one. Counters are
// named portal_*_total and the one histogram is portal_operation_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry.
//   - Mutate store state.
package prometheus

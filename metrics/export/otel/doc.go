// Package otel publishes session store metrics through an OpenTelemetry meter.
//
// [NewOTelExporter] registers an Int64ObservableCounter per store counter and
// two gauges for the latency histogram: cumulative bucket counts keyed by an
// "le" attribute, and the sample count. One callback reads the store snapshot
// per collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate store state.
package otel

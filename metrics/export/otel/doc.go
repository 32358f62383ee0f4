// Package otel binds session manager metrics to OpenTelemetry.
//
// [NewExporter] registers an Int64ObservableCounter per counter and an
// Int64ObservableGauge per latency bucket. One callback reads the manager's
// MetricsSnapshot on each collection cycle. Callers own the MeterProvider.
package otel

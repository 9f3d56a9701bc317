// Package otel publishes cookieauth metrics as OpenTelemetry observable
// instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per engine counter
// and one Int64ObservableGauge per histogram bucket. A single callback reads
// Engine.MetricsSnapshot on each collection cycle. Callers own the
// MeterProvider.
package otel

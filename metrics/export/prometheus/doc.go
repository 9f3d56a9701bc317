// Package prometheus publishes cookieauth metrics through client_golang.
//
// [Collector] implements prometheus.Collector over Engine.MetricsSnapshot.
// Counter names are cookieauth_*_total and the single histogram is
// cookieauth_resolve_latency_seconds. [Handler] serves a private registry
// holding the collector plus the Go runtime and process collectors.
package prometheus

package cookieauth

import (
	internalmetrics "github.com/MrEthical07/cookieauth/internal/metrics"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot = internalmetrics.Snapshot

// Metrics is the engine's in-process metric store.
type Metrics = internalmetrics.Metrics

const (
	MetricLoginSuccess       = internalmetrics.MetricLoginSuccess
	MetricLoginFailure       = internalmetrics.MetricLoginFailure
	MetricLoginInvalidInput  = internalmetrics.MetricLoginInvalidInput
	MetricRegisterSuccess    = internalmetrics.MetricRegisterSuccess
	MetricRegisterFailure    = internalmetrics.MetricRegisterFailure
	MetricRegisterDuplicate  = internalmetrics.MetricRegisterDuplicate
	MetricSessionResolved    = internalmetrics.MetricSessionResolved
	MetricSessionRepaired    = internalmetrics.MetricSessionRepaired
	MetricSessionMissing     = internalmetrics.MetricSessionMissing
	MetricSessionRejected    = internalmetrics.MetricSessionRejected
	MetricSessionUserMissing = internalmetrics.MetricSessionUserMissing
	MetricProfileUpdated     = internalmetrics.MetricProfileUpdated
	MetricLogout             = internalmetrics.MetricLogout
	MetricDirectoryError     = internalmetrics.MetricDirectoryError
	MetricResolveLatency     = internalmetrics.MetricResolveLatency
)

// NewMetrics returns a metric store configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:                 cfg.Enabled,
		EnableLatencyHistograms: cfg.EnableLatencyHistograms,
	})
}

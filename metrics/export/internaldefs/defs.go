package internaldefs

import (
	"github.com/MrEthical07/cookieauth"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   cookieauth.MetricID
	Name string
	Help string
}

// HistogramDef names one engine latency histogram.
type HistogramDef struct {
	ID   cookieauth.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter of audit events lost to backpressure.
const AuditDroppedName = "cookieauth_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

var CounterDefs = []CounterDef{
	{ID: cookieauth.MetricLoginSuccess, Name: "cookieauth_login_success_total", Help: "Successful logins."},
	{ID: cookieauth.MetricLoginFailure, Name: "cookieauth_login_failure_total", Help: "Logins rejected after validation."},
	{ID: cookieauth.MetricLoginInvalidInput, Name: "cookieauth_login_invalid_input_total", Help: "Logins rejected by input validation."},
	{ID: cookieauth.MetricRegisterSuccess, Name: "cookieauth_register_success_total", Help: "Successful registrations."},
	{ID: cookieauth.MetricRegisterFailure, Name: "cookieauth_register_failure_total", Help: "Failed registrations."},
	{ID: cookieauth.MetricRegisterDuplicate, Name: "cookieauth_register_duplicate_total", Help: "Registrations rejected for a duplicate email."},
	{ID: cookieauth.MetricSessionResolved, Name: "cookieauth_session_resolved_total", Help: "Cookie sessions resolved."},
	{ID: cookieauth.MetricSessionRepaired, Name: "cookieauth_session_repaired_total", Help: "Sessions whose access credential was reissued."},
	{ID: cookieauth.MetricSessionMissing, Name: "cookieauth_session_missing_total", Help: "Requests without a usable tokens cookie."},
	{ID: cookieauth.MetricSessionRejected, Name: "cookieauth_session_rejected_total", Help: "Sessions rejected by credential verification."},
	{ID: cookieauth.MetricSessionUserMissing, Name: "cookieauth_session_user_missing_total", Help: "Repairs that found no user for the refresh credential."},
	{ID: cookieauth.MetricProfileUpdated, Name: "cookieauth_profile_updated_total", Help: "Profile updates."},
	{ID: cookieauth.MetricLogout, Name: "cookieauth_logout_total", Help: "Logouts."},
	{ID: cookieauth.MetricDirectoryError, Name: "cookieauth_directory_error_total", Help: "User directory failures."},
}

var HistogramDefs = []HistogramDef{
	{ID: cookieauth.MetricResolveLatency, Name: "cookieauth_resolve_latency_seconds", Help: "Session resolution latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// engine bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that
// publish one instrument per bucket.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

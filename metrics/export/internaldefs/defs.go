package internaldefs

import (
	portalAuth "github.com/MrEthical07/portalAuth"
)

// CounterDef names one store counter for every exporter.
type CounterDef struct {
	ID   portalAuth.MetricID
	Name string
	Help string
}

// HistogramDef names one store histogram for every exporter.
type HistogramDef struct {
	ID   portalAuth.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: portalAuth.MetricLoginSuccess, Name: "portal_login_success_total", Help: "Logins that acquired a token."},
	{ID: portalAuth.MetricLoginFailure, Name: "portal_login_failure_total", Help: "Rejected or failed logins."},
	{ID: portalAuth.MetricRegisterSuccess, Name: "portal_register_success_total", Help: "Registrations that acquired a token."},
	{ID: portalAuth.MetricRegisterFailure, Name: "portal_register_failure_total", Help: "Rejected or failed registrations."},
	{ID: portalAuth.MetricRefreshSuccess, Name: "portal_refresh_success_total", Help: "Loading refreshes that acquired a token."},
	{ID: portalAuth.MetricRefreshFailure, Name: "portal_refresh_failure_total", Help: "Loading refreshes that cleared the session."},
	{ID: portalAuth.MetricSilentRefreshSuccess, Name: "portal_silent_refresh_success_total", Help: "Background refreshes that acquired a token."},
	{ID: portalAuth.MetricSilentRefreshFailure, Name: "portal_silent_refresh_failure_total", Help: "Background refreshes that cleared the session."},
	{ID: portalAuth.MetricProfileSuccess, Name: "portal_profile_success_total", Help: "Profile fetches that stored a user."},
	{ID: portalAuth.MetricProfileFailure, Name: "portal_profile_failure_total", Help: "Failed profile fetches."},
	{ID: portalAuth.MetricProfilePending, Name: "portal_profile_pending_total", Help: "Compound operations left with a token and no profile."},
	{ID: portalAuth.MetricLogoutSuccess, Name: "portal_logout_success_total", Help: "Logouts that cleared the session."},
	{ID: portalAuth.MetricLogoutFailure, Name: "portal_logout_failure_total", Help: "Failed logouts."},
	{ID: portalAuth.MetricStaleResponse, Name: "portal_stale_response_total", Help: "Responses discarded because a newer operation had already applied."},
	{ID: portalAuth.MetricSessionCleared, Name: "portal_session_cleared_total", Help: "Times the session was cleared."},
	{ID: portalAuth.MetricPersistFailure, Name: "portal_persist_failure_total", Help: "Failed snapshot writes."},
	{ID: portalAuth.MetricRestoreSuccess, Name: "portal_restore_success_total", Help: "Sessions restored from the persister."},
	{ID: portalAuth.MetricRestoreFailure, Name: "portal_restore_failure_total", Help: "Failed restores."},
}

var HistogramDefs = []HistogramDef{
	{ID: portalAuth.MetricOperationLatency, Name: "portal_operation_latency_seconds", Help: "Latency of network-backed session operations."},
}

// HistogramBounds are the bucket upper bounds in seconds, as exposition labels.
var HistogramBounds = []string{
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"+Inf",
}

// HistogramBoundSeconds holds the finite bounds of HistogramBounds.
var HistogramBoundSeconds = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// HistogramBoundSuffix is HistogramBounds made safe for instrument names.
var HistogramBoundSuffix = []string{
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"inf",
}

// NormalizeBuckets copies up to eight raw bucket counts into a fixed array.
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

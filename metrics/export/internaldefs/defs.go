package internaldefs

import (
	"github.com/simstudio/authclient"
)

// CounterDef names one counter.
type CounterDef struct {
	ID   authclient.MetricID
	Name string
	Help string
}

// HistogramDef names one histogram.
type HistogramDef struct {
	ID   authclient.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for AuditDropped.
const (
	AuditDroppedName = "authclient_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: authclient.MetricSubmit, Name: "authclient_submit_total", Help: "Submissions started."},
	{ID: authclient.MetricSubmitRejected, Name: "authclient_submit_rejected_total", Help: "Submissions rejected because another was in flight."},
	{ID: authclient.MetricValidationFailure, Name: "authclient_validation_failure_total", Help: "Submissions that failed field validation."},
	{ID: authclient.MetricSignInSuccess, Name: "authclient_sign_in_success_total", Help: "Successful primary sign-ins."},
	{ID: authclient.MetricSignInFailure, Name: "authclient_sign_in_failure_total", Help: "Recoverable primary sign-in failures."},
	{ID: authclient.MetricVerificationRequired, Name: "authclient_verification_required_total", Help: "Sign-ins that required email verification."},
	{ID: authclient.MetricVerificationSent, Name: "authclient_verification_sent_total", Help: "Verification codes sent."},
	{ID: authclient.MetricVerificationSendFailure, Name: "authclient_verification_send_failure_total", Help: "Verification code sends that failed."},
	{ID: authclient.MetricBootstrapSuccess, Name: "authclient_bootstrap_success_total", Help: "Partner sessions bootstrapped with a full token pair."},
	{ID: authclient.MetricBootstrapDegraded, Name: "authclient_bootstrap_degraded_total", Help: "Partner sessions bootstrapped without a refresh token."},
	{ID: authclient.MetricBootstrapFailure, Name: "authclient_bootstrap_failure_total", Help: "Partner session bootstraps that failed."},
	{ID: authclient.MetricRefreshSuccess, Name: "authclient_refresh_success_total", Help: "Successful partner token refreshes."},
	{ID: authclient.MetricRefreshFailure, Name: "authclient_refresh_failure_total", Help: "Failed partner token refreshes."},
	{ID: authclient.MetricRetry, Name: "authclient_retry_total", Help: "Partner requests retried after a refresh."},
	{ID: authclient.MetricSessionExpired, Name: "authclient_session_expired_total", Help: "Partner sessions cleared after a failed refresh."},
	{ID: authclient.MetricThrottled, Name: "authclient_throttled_total", Help: "Submissions blocked by the local attempt throttle."},
	{ID: authclient.MetricDecryptFailure, Name: "authclient_decrypt_failure_total", Help: "Encrypted credentials that could not be decrypted."},
	{ID: authclient.MetricNavigationFailure, Name: "authclient_navigation_failure_total", Help: "Navigations that failed after a terminal outcome."},
	{ID: authclient.MetricSignOut, Name: "authclient_sign_out_total", Help: "Sign-outs."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authclient.MetricSubmitLatency, Name: "authclient_submit_latency_seconds", Help: "Latency of validated submissions."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last raw bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters without native
// histograms.
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

// NormalizeBuckets pads or truncates raw to eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

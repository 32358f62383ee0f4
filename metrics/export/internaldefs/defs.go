package internaldefs

import (
	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: goAuthClient.MetricLoginSuccess, Name: "goauth_client_login_success_total", Help: "Logins that stored a token and fetched the user."},
	{ID: goAuthClient.MetricLoginFailure, Name: "goauth_client_login_failure_total", Help: "Rejected or incomplete logins."},
	{ID: goAuthClient.MetricRegisterSuccess, Name: "goauth_client_register_success_total", Help: "Completed registrations."},
	{ID: goAuthClient.MetricRegisterFailure, Name: "goauth_client_register_failure_total", Help: "Rejected or incomplete registrations."},
	{ID: goAuthClient.MetricLogout, Name: "goauth_client_logout_total", Help: "Logouts."},
	{ID: goAuthClient.MetricLogoutNotifyFailure, Name: "goauth_client_logout_notify_failure_total", Help: "Logout notifications the endpoint did not accept."},
	{ID: goAuthClient.MetricFetchUserSuccess, Name: "goauth_client_fetch_user_success_total", Help: "Successful current-user fetches."},
	{ID: goAuthClient.MetricFetchUserFailure, Name: "goauth_client_fetch_user_failure_total", Help: "Failed current-user fetches."},
	{ID: goAuthClient.MetricSessionInvalidated, Name: "goauth_client_session_invalidated_total", Help: "Sessions cleared by a 401 or a fatal refresh failure."},
	{ID: goAuthClient.MetricRefreshSuccess, Name: "goauth_client_refresh_success_total", Help: "Token refreshes."},
	{ID: goAuthClient.MetricRefreshFailure, Name: "goauth_client_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: goAuthClient.MetricSignatureVerified, Name: "goauth_client_signature_verified_total", Help: "Signatures the endpoint accepted."},
	{ID: goAuthClient.MetricSignatureRejected, Name: "goauth_client_signature_rejected_total", Help: "Signatures rejected or not checked."},
	{ID: goAuthClient.MetricBootstrapSuccess, Name: "goauth_client_bootstrap_success_total", Help: "Sessions recovered from the session-token route."},
	{ID: goAuthClient.MetricBootstrapFailure, Name: "goauth_client_bootstrap_failure_total", Help: "Session-token attempts that yielded no session."},
	{ID: goAuthClient.MetricInitialize, Name: "goauth_client_initialize_total", Help: "Completed initialize sequences."},
	{ID: goAuthClient.MetricPersistFailure, Name: "goauth_client_persist_failure_total", Help: "Persistence sink writes that failed."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goAuthClient.MetricRemoteLatency, Name: "goauth_client_remote_latency_seconds", Help: "Remote auth endpoint call latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// in-process bucket is +Inf.
var HistogramUpperBounds = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// HistogramBoundSuffix names each bucket, +Inf included, for backends without
// native histogram support.
var HistogramBoundSuffix = []string{
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero filling.
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

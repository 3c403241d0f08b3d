package internaldefs

import (
	goShield "github.com/MrEthical07/goShield"
)

// CounterDef binds one engine counter to its exported name.
type CounterDef struct {
	ID   goShield.MetricID
	Name string
	Help string
}

// HistogramDef binds one engine histogram to its exported name.
type HistogramDef struct {
	ID   goShield.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in engine declaration order.
var CounterDefs = []CounterDef{
	{ID: goShield.MetricLoginSuccess, Name: "goshield_login_success_total", Help: "Successful login attempts."},
	{ID: goShield.MetricLoginFailure, Name: "goshield_login_failure_total", Help: "Failed login attempts."},
	{ID: goShield.MetricLoginBlocked, Name: "goshield_login_blocked_total", Help: "Logins rejected at the address block-list gate."},
	{ID: goShield.MetricLoginSuspicious, Name: "goshield_login_suspicious_total", Help: "Logins flagged by the anomaly check."},
	{ID: goShield.MetricRegistrationSuccess, Name: "goshield_registration_success_total", Help: "Created accounts."},
	{ID: goShield.MetricRegistrationDuplicate, Name: "goshield_registration_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: goShield.MetricAddressBlocked, Name: "goshield_address_blocked_total", Help: "Addresses added to the block list."},
	{ID: goShield.MetricRefreshSuccess, Name: "goshield_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goShield.MetricRefreshFailure, Name: "goshield_refresh_failure_total", Help: "Rejected refresh attempts."},
	{ID: goShield.MetricRefreshReuseDetected, Name: "goshield_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: goShield.MetricSessionCreated, Name: "goshield_session_created_total", Help: "Created sessions."},
	{ID: goShield.MetricSessionInvalidated, Name: "goshield_session_invalidated_total", Help: "Sessions flipped inactive."},
	{ID: goShield.MetricSessionExpired, Name: "goshield_session_expired_total", Help: "Sessions reaped by lazy expiry."},
	{ID: goShield.MetricLogout, Name: "goshield_logout_total", Help: "Logout operations."},
	{ID: goShield.MetricVerificationRequest, Name: "goshield_verification_request_total", Help: "Issued verification codes."},
	{ID: goShield.MetricVerificationSuccess, Name: "goshield_verification_success_total", Help: "Verified accounts."},
	{ID: goShield.MetricVerificationFailure, Name: "goshield_verification_failure_total", Help: "Rejected verification attempts."},
	{ID: goShield.MetricResetRequest, Name: "goshield_reset_request_total", Help: "Issued password reset tokens."},
	{ID: goShield.MetricResetSuccess, Name: "goshield_reset_success_total", Help: "Completed password resets."},
	{ID: goShield.MetricResetFailure, Name: "goshield_reset_failure_total", Help: "Rejected reset confirmations."},
	{ID: goShield.MetricWalletCredit, Name: "goshield_wallet_credit_total", Help: "Wallet credit operations."},
	{ID: goShield.MetricWalletDebit, Name: "goshield_wallet_debit_total", Help: "Wallet debit operations."},
	{ID: goShield.MetricWalletRejected, Name: "goshield_wallet_rejected_total", Help: "Debits rejected by the non-negative balance invariant."},
	{ID: goShield.MetricNotifyFailure, Name: "goshield_notify_failure_total", Help: "Non-fatal notifier delivery failures."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goShield.MetricValidateLatency, Name: "goshield_validate_latency_seconds", Help: "Access-token validation latency."},
}

// UpperBounds are the histogram bucket upper bounds in seconds. The engine's
// eighth bucket is +Inf and is implied.
var UpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// BoundLabels are the Prometheus le label values including +Inf.
var BoundLabels = []string{"0.005", "0.01", "0.025", "0.05", "0.1", "0.25", "0.5", "+Inf"}

// BoundSuffixes name the per-bucket OpenTelemetry gauges.
var BoundSuffixes = []string{"0_005", "0_01", "0_025", "0_05", "0_1", "0_25", "0_5", "inf"}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed eight
// engine buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

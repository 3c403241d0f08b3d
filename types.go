package goShield

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	internalaudit "github.com/MrEthical07/goShield/internal/audit"
	internalguard "github.com/MrEthical07/goShield/internal/guard"
	internalmetrics "github.com/MrEthical07/goShield/internal/metrics"
	"github.com/MrEthical07/goShield/notify"
	"github.com/MrEthical07/goShield/session"
)

// Role is the closed set of account roles recognized by the engine.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "user"
	// RoleAdmin marks administrative accounts.
	RoleAdmin Role = "admin"
)

// IdentificationStatus tracks where an account stands in identity
// verification. The engine stamps new accounts with
// [IdentificationNone] and carries the value on the record; moving it
// through the later states is the host application's job.
type IdentificationStatus string

const (
	// IdentificationNone means no identity documents were submitted.
	IdentificationNone IdentificationStatus = "none"
	// IdentificationPending means submitted documents await review.
	IdentificationPending IdentificationStatus = "pending"
	// IdentificationVerified means identity review passed.
	IdentificationVerified IdentificationStatus = "verified"
	// IdentificationRejected means identity review failed.
	IdentificationRejected IdentificationStatus = "rejected"
)

// UserRecord is the full account record exchanged with [UserStore]. It carries the
// credential hash, verification/reset challenge state, the refresh-token secret
// hash, wallet balance, and the soft-delete tombstone.
type UserRecord struct {
	UserID       string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	AccountCode  string

	Verified        bool
	EmailVerifiedAt *time.Time

	IdentificationStatus IdentificationStatus

	WalletBalance decimal.Decimal

	VerificationCode      string
	VerificationExpiresAt time.Time

	ResetSecretHash [32]byte
	ResetExpiresAt  time.Time

	RefreshSecretHash [32]byte

	CreatedAt time.Time
	DeletedAt *time.Time
}

// Tombstoned reports whether the record is soft-deleted.
func (u UserRecord) Tombstoned() bool {
	return u.DeletedAt != nil
}

// UserStore is the primary collaborator interface callers must implement to
// integrate goShield with their user database. Lookups exclude tombstoned records
// unless documented otherwise. Implementations must back CreateUser with real
// uniqueness constraints: email unique among non-tombstoned records, account
// code unique across all records. RestoreUser must fail with ErrEmailTaken
// when a live record holds the email. RotateRefreshSecret and
// AdjustWalletBalance must be single-row atomic.
type UserStore interface {
	CreateUser(ctx context.Context, record UserRecord) error
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	// GetUserByIDIncludeDeleted also matches tombstoned records (restore path).
	GetUserByIDIncludeDeleted(ctx context.Context, userID string) (UserRecord, error)

	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	UpdateRole(ctx context.Context, userID string, role Role) error

	SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, userID string, at time.Time) error

	SetResetSecret(ctx context.Context, userID string, secretHash [32]byte, expiresAt time.Time) error
	GetUserByResetHash(ctx context.Context, secretHash [32]byte) (UserRecord, error)
	ClearResetSecret(ctx context.Context, userID string) error

	SetRefreshSecret(ctx context.Context, userID string, secretHash [32]byte) error
	GetUserByRefreshHash(ctx context.Context, secretHash [32]byte) (UserRecord, error)
	// RotateRefreshSecret swaps current for next only when current still matches the
	// stored value; it reports false when a concurrent rotation already won.
	RotateRefreshSecret(ctx context.Context, userID string, current, next [32]byte) (bool, error)
	ClearRefreshSecret(ctx context.Context, userID string) error

	// AdjustWalletBalance applies delta atomically and fails the write when the
	// resulting balance would be negative. It returns the balance after the write.
	AdjustWalletBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error)

	SoftDeleteUser(ctx context.Context, userID string, at time.Time) error
	RestoreUser(ctx context.Context, userID string) error
}

// TokenPair bundles the signed access token and the opaque refresh token issued by
// a successful authentication.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned by [Engine.ValidateAccess]. Validity is cryptographic; no
// store lookup is performed.
type AuthResult struct {
	UserID    string
	SessionID string
	Role      Role
}

// RegisterResult is returned by [Engine.Register].
type RegisterResult struct {
	UserID      string
	AccountCode string
	Session     *session.Session
	Tokens      TokenPair
}

// LoginResult is returned by [Engine.Login]. Suspicious reports the anomaly check
// outcome; a suspicious login is informational and never blocks the flow.
type LoginResult struct {
	UserID     string
	Session    *session.Session
	Tokens     TokenPair
	Suspicious bool
	Suspicion  session.Suspicion
}

// RegisterRequest is the input for [Engine.Register].
type RegisterRequest struct {
	Email    string
	Phone    string
	Password string
}

// Notifier is the out-of-band delivery collaborator. Delivery failures are
// non-fatal to every flow that triggers them.
type Notifier = notify.Notifier

// Notification is the template + recipient payload handed to a [Notifier].
type Notification = notify.Notification

// BlockedAddress is a block-list entry created by the brute-force guard.
type BlockedAddress = internalguard.BlockedAddress

// BlockStore persists the address block list.
type BlockStore = internalguard.BlockStore

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts failed credential checks.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginBlocked counts logins rejected at the block-list gate.
	MetricLoginBlocked = internalmetrics.MetricLoginBlocked
	// MetricLoginSuspicious counts anomaly-flagged logins.
	MetricLoginSuspicious = internalmetrics.MetricLoginSuspicious
	// MetricRegistrationSuccess counts created accounts.
	MetricRegistrationSuccess = internalmetrics.MetricRegistrationSuccess
	// MetricRegistrationDuplicate counts registrations losing the uniqueness race.
	MetricRegistrationDuplicate = internalmetrics.MetricRegistrationDuplicate
	// MetricAddressBlocked counts addresses added to the block list.
	MetricAddressBlocked = internalmetrics.MetricAddressBlocked
	// MetricRefreshSuccess counts successful token rotations.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh attempts.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricRefreshReuseDetected counts rotations lost to a concurrent winner.
	MetricRefreshReuseDetected = internalmetrics.MetricRefreshReuseDetected
	// MetricSessionCreated counts sessions created by login and registration.
	MetricSessionCreated = internalmetrics.MetricSessionCreated
	// MetricSessionInvalidated counts sessions flipped inactive.
	MetricSessionInvalidated = internalmetrics.MetricSessionInvalidated
	// MetricSessionExpired counts sessions reaped by lazy expiry.
	MetricSessionExpired = internalmetrics.MetricSessionExpired
	// MetricLogout counts logout calls.
	MetricLogout = internalmetrics.MetricLogout
	// MetricVerificationRequest counts issued verification codes.
	MetricVerificationRequest = internalmetrics.MetricVerificationRequest
	// MetricVerificationSuccess counts verified accounts.
	MetricVerificationSuccess = internalmetrics.MetricVerificationSuccess
	// MetricVerificationFailure counts rejected verification attempts.
	MetricVerificationFailure = internalmetrics.MetricVerificationFailure
	// MetricResetRequest counts issued reset tokens.
	MetricResetRequest = internalmetrics.MetricResetRequest
	// MetricResetSuccess counts completed password resets.
	MetricResetSuccess = internalmetrics.MetricResetSuccess
	// MetricResetFailure counts rejected reset confirmations.
	MetricResetFailure = internalmetrics.MetricResetFailure
	// MetricWalletCredit counts wallet credits.
	MetricWalletCredit = internalmetrics.MetricWalletCredit
	// MetricWalletDebit counts wallet debits.
	MetricWalletDebit = internalmetrics.MetricWalletDebit
	// MetricWalletRejected counts debits rejected by the non-negative invariant.
	MetricWalletRejected = internalmetrics.MetricWalletRejected
	// MetricNotifyFailure counts non-fatal notifier delivery failures.
	MetricNotifyFailure = internalmetrics.MetricNotifyFailure
	// MetricValidateLatency is the access-token validation latency histogram.
	MetricValidateLatency = internalmetrics.MetricValidateLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}

package session

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a session, device, or activity row does not exist.
var ErrNotFound = errors.New("session not found")

// ErrExpired is returned by Validate once a session's fixed expiry has passed.
var ErrExpired = errors.New("session expired")

// ErrInactive is returned by Validate for a session that was invalidated
// before its expiry.
var ErrInactive = errors.New("session inactive")

// ActivityType enumerates security-relevant events recorded in the activity
// trail.
type ActivityType string

const (
	ActivityLogin            ActivityType = "LOGIN"
	ActivityLoginFailed      ActivityType = "LOGIN_FAILED"
	ActivityRegistration     ActivityType = "REGISTRATION"
	ActivityEmailVerified    ActivityType = "EMAIL_VERIFIED"
	ActivityResetRequested   ActivityType = "PASSWORD_RESET_REQUESTED"
	ActivityResetCompleted   ActivityType = "PASSWORD_RESET_COMPLETED"
	ActivityTokenRefreshed   ActivityType = "TOKEN_REFRESHED"
	ActivityLogout           ActivityType = "LOGOUT"
	ActivitySuspiciousLogin  ActivityType = "SUSPICIOUS_LOGIN"
	ActivityAddressBlocked   ActivityType = "ADDRESS_BLOCKED"
	ActivityAddressUnblocked ActivityType = "ADDRESS_UNBLOCKED"
	ActivityAccountDeleted   ActivityType = "ACCOUNT_DELETED"
	ActivityAccountRestored  ActivityType = "ACCOUNT_RESTORED"
	ActivityRoleChanged      ActivityType = "ROLE_CHANGED"
	ActivityWalletAdjusted   ActivityType = "WALLET_ADJUSTED"
)

// ActivityStatus marks an activity row as a success or a failure.
type ActivityStatus string

const (
	StatusSuccess ActivityStatus = "SUCCESS"
	StatusFailed  ActivityStatus = "FAILED"
)

// RequestMeta carries the request attributes used for fingerprinting and
// geolocation. Zero values are allowed; missing attributes simply weaken the
// fingerprint.
type RequestMeta struct {
	Address        string
	UserAgent      string
	AcceptLanguage string
}

// Location is a resolved geographic position. Known is false when resolution
// failed or was skipped; such locations never participate in distance checks.
type Location struct {
	Latitude  float64
	Longitude float64
	City      string
	Country   string
	Known     bool
}

// Session is one authenticated login. ExpiresAt is fixed at creation and
// never extended; LastActivity starts equal to CreatedAt and does not move
// the expiry. Active flips to false on invalidation or on the first
// validation after expiry; the row itself is never deleted.
type Session struct {
	SessionID    string
	UserID       string
	Fingerprint  string
	UserAgent    string
	Address      string
	Location     Location
	Active       bool
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the session's fixed expiry has passed at t.
func (s *Session) Expired(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// Device is one (user, fingerprint) pair with coarse attributes parsed from
// the user agent.
type Device struct {
	DeviceID    string
	UserID      string
	Fingerprint string
	Browser     string
	OS          string
	DeviceType  string
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// Activity is one append-only trail entry. UserID is empty for events against
// unknown accounts, for example a failed login with an unregistered email.
// SessionID is empty when no session was involved.
type Activity struct {
	ActivityID  string
	UserID      string
	SessionID   string
	Type        ActivityType
	Status      ActivityStatus
	Fingerprint string
	Location    Location
	Detail      map[string]string
	CreatedAt   time.Time
}

// Suspicion is the outcome of the login anomaly check.
type Suspicion struct {
	// NewDevice is true when the fingerprint has never been seen for the user.
	NewDevice bool
	// DistantLocation is true when the resolved location is farther than the
	// configured threshold from every previously recorded location. A user
	// with no recorded locations, or an unresolved current location, is never
	// location-suspicious.
	DistantLocation bool
	// NearestKnownKM is the distance to the closest previously recorded
	// location. Only meaningful when both current and prior locations exist.
	NearestKnownKM float64
}

// Any reports whether either anomaly signal fired.
func (s Suspicion) Any() bool {
	return s.NewDevice || s.DistantLocation
}

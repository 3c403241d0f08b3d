package goShield

import (
	"errors"
	"time"
)

// Config is the full engine configuration. Populate it before Build; the
// engine treats it as immutable afterward.
type Config struct {
	JWT          JWTConfig
	Session      SessionConfig
	Password     PasswordConfig
	Verification VerificationConfig
	Reset        ResetConfig
	Guard        GuardConfig
	Account      AccountConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures the access-token issuer.
type JWTConfig struct {
	AccessTTL     time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures session lifetime and the login anomaly check.
type SessionConfig struct {
	// TTL is the fixed session lifetime. No sliding renewal.
	TTL time.Duration
	// SuspiciousDistanceKM flags logins farther than this from every prior
	// recorded location.
	SuspiciousDistanceKM float64
	// GeoResolveTimeout bounds each GeoResolver call.
	GeoResolveTimeout time.Duration
	// LocationHistoryLimit caps the prior locations loaded per anomaly check.
	LocationHistoryLimit int
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig configures the Argon2id hasher and the password policy.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// MinLength is the policy minimum for new passwords, in bytes.
	MinLength int
	// UpgradeOnLogin rehashes credentials stored with weaker parameters on
	// the next successful login.
	UpgradeOnLogin bool
}

/*
====================================
VERIFICATION / RESET CONFIG
====================================
*/

// VerificationConfig configures email verification codes.
type VerificationConfig struct {
	TTL       time.Duration
	OTPDigits int
}

// ResetConfig configures password reset tokens.
type ResetConfig struct {
	TTL time.Duration
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig configures the brute-force guard. A block triggered at the
// threshold never auto-expires; recovery is an explicit admin unblock.
type GuardConfig struct {
	FailureThreshold int
	FailureWindow    time.Duration
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

// AccountConfig configures account-level behavior.
type AccountConfig struct {
	// AccountCodeLength is the length of the generated account reference code.
	AccountCodeLength int
	// CodeRetryAttempts bounds how many fresh codes registration tries against
	// the store uniqueness constraint before giving up.
	CodeRetryAttempts int
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig configures the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig configures the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     15 * time.Minute,
			SigningMethod: "hs256",
			Leeway:        30 * time.Second,
		},
		Session: SessionConfig{
			TTL:                  24 * time.Hour,
			SuspiciousDistanceKM: 1000,
			GeoResolveTimeout:    2 * time.Second,
			LocationHistoryLimit: 50,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			MinLength:      8,
			UpgradeOnLogin: true,
		},
		Verification: VerificationConfig{
			TTL:       30 * time.Minute,
			OTPDigits: 6,
		},
		Reset: ResetConfig{
			TTL: 30 * time.Minute,
		},
		Guard: GuardConfig{
			FailureThreshold: 5,
			FailureWindow:    15 * time.Minute,
		},
		Account: AccountConfig{
			AccountCodeLength: 10,
			CodeRetryAttempts: 5,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DevelopmentConfig returns defaults tuned for local development: metrics and
// audit on, weaker (faster) hashing cost.
func DevelopmentConfig() Config {
	cfg := defaultConfig()
	cfg.Password.Memory = 16 * 1024
	cfg.Password.Time = 1
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

// ProductionConfig returns hardened defaults. Signing keys must still be
// supplied by the caller.
func ProductionConfig() Config {
	cfg := defaultConfig()
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true
	return cfg
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	if len(cfg.JWT.VerifyKeys) > 0 {
		out.JWT.VerifyKeys = make(map[string][]byte, len(cfg.JWT.VerifyKeys))
		for kid, key := range cfg.JWT.VerifyKeys {
			out.JWT.VerifyKeys[kid] = cloneBytes(key)
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internally inconsistent or unsafe
// values. Build calls it; callers may also call it directly.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.SigningMethod != "hs256" && c.JWT.SigningMethod != "ed25519" {
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.SigningMethod == "hs256" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("hs256 requires PrivateKey")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("ed25519 requires PrivateKey")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PublicKey) == 0 && len(c.JWT.VerifyKeys) == 0 {
		return errors.New("ed25519 requires PublicKey or VerifyKeys")
	}
	if c.JWT.Leeway < 0 {
		return errors.New("JWT Leeway must be >= 0")
	}

	// Session
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}
	if c.Session.SuspiciousDistanceKM <= 0 {
		return errors.New("Session SuspiciousDistanceKM must be > 0")
	}
	if c.Session.GeoResolveTimeout <= 0 {
		return errors.New("Session GeoResolveTimeout must be > 0")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MinLength < 8 {
		return errors.New("Password MinLength must be >= 8")
	}

	// Verification
	if c.Verification.TTL <= 0 {
		return errors.New("Verification TTL must be > 0")
	}
	if c.Verification.OTPDigits < 6 || c.Verification.OTPDigits > 10 {
		return errors.New("Verification OTPDigits must be between 6 and 10")
	}

	// Reset
	if c.Reset.TTL <= 0 {
		return errors.New("Reset TTL must be > 0")
	}

	// Guard
	if c.Guard.FailureThreshold < 1 {
		return errors.New("Guard FailureThreshold must be >= 1")
	}
	if c.Guard.FailureWindow <= 0 {
		return errors.New("Guard FailureWindow must be > 0")
	}

	// Account
	if c.Account.AccountCodeLength < 6 || c.Account.AccountCodeLength > 16 {
		return errors.New("Account AccountCodeLength must be between 6 and 16")
	}
	if c.Account.CodeRetryAttempts < 1 {
		return errors.New("Account CodeRetryAttempts must be >= 1")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}

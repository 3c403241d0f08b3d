package goShield

import "time"

// SecurityReport is a point-in-time summary of the engine's security posture,
// derived entirely from configuration. Useful for startup logs and admin
// endpoints.
type SecurityReport struct {
	SigningAlgorithm     string
	AccessTTL            time.Duration
	SessionTTL           time.Duration
	Argon2               PasswordConfigReport
	PasswordMinLength    int
	VerificationTTL      time.Duration
	ResetTTL             time.Duration
	FailureThreshold     int
	FailureWindow        time.Duration
	SuspiciousDistanceKM float64
	AuditEnabled         bool
	MetricsEnabled       bool
}

// PasswordConfigReport mirrors the Argon2id cost parameters in effect.
type PasswordConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SecurityReport returns the current posture summary.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SigningAlgorithm: e.config.JWT.SigningMethod,
		AccessTTL:        e.config.JWT.AccessTTL,
		SessionTTL:       e.config.Session.TTL,
		Argon2: PasswordConfigReport{
			Memory:      e.config.Password.Memory,
			Time:        e.config.Password.Time,
			Parallelism: e.config.Password.Parallelism,
			SaltLength:  e.config.Password.SaltLength,
			KeyLength:   e.config.Password.KeyLength,
		},
		PasswordMinLength:    e.config.Password.MinLength,
		VerificationTTL:      e.config.Verification.TTL,
		ResetTTL:             e.config.Reset.TTL,
		FailureThreshold:     e.config.Guard.FailureThreshold,
		FailureWindow:        e.config.Guard.FailureWindow,
		SuspiciousDistanceKM: e.config.Session.SuspiciousDistanceKM,
		AuditEnabled:         e.config.Audit.Enabled,
		MetricsEnabled:       e.config.Metrics.Enabled,
	}
}

package goShield

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventLoginBlocked         = "login_blocked"
	auditEventLoginSuspicious      = "login_suspicious"
	auditEventRegistrationSuccess  = "registration_success"
	auditEventRegistrationFailure  = "registration_failure"
	auditEventAddressBlocked       = "address_blocked"
	auditEventAddressUnblocked     = "address_unblocked"
	auditEventVerificationRequest  = "email_verification_request"
	auditEventVerificationConfirm  = "email_verification_confirm"
	auditEventResetRequest         = "password_reset_request"
	auditEventResetConfirm         = "password_reset_confirm"
	auditEventRefreshSuccess       = "refresh_success"
	auditEventRefreshInvalid       = "refresh_invalid"
	auditEventRefreshReuseDetected = "refresh_reuse_detected"
	auditEventLogoutSession        = "logout_session"
	auditEventLogoutAll            = "logout_all"
	auditEventWalletCredit         = "wallet_credit"
	auditEventWalletDebit          = "wallet_debit"
	auditEventWalletRejected       = "wallet_rejected"
	auditEventAccountDeleted       = "account_deleted"
	auditEventAccountRestored      = "account_restored"
	auditEventRoleChanged          = "role_changed"
)

// AuditErrorCode is the coarse error classification recorded on audit events.
// It never carries internal error detail.
type AuditErrorCode string

const (
	auditErrUnauthorized       AuditErrorCode = "unauthorized"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrBlocked            AuditErrorCode = "address_blocked"
	auditErrValidation         AuditErrorCode = "validation"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrUnverified         AuditErrorCode = "account_unverified"
	auditErrDeleted            AuditErrorCode = "account_deleted"
	auditErrCodeInvalid        AuditErrorCode = "code_invalid"
	auditErrCodeExpired        AuditErrorCode = "code_expired"
	auditErrResetInvalid       AuditErrorCode = "reset_token_invalid"
	auditErrRefreshInvalid     AuditErrorCode = "refresh_invalid"
	auditErrSessionNotFound    AuditErrorCode = "session_not_found"
	auditErrSessionExpired     AuditErrorCode = "session_expired"
	auditErrInsufficientFunds  AuditErrorCode = "insufficient_funds"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   eventType,
		UserID:      userID,
		SessionID:   sessionID,
		Address:     clientIPFromContext(ctx),
		Fingerprint: e.sessions.Fingerprint(requestMetaFromContext(ctx)),
		Success:     success,
		Metadata:    metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenInvalid):
		return auditErrUnauthorized
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAddressBlocked):
		return auditErrBlocked
	case errors.Is(err, ErrValidation), errors.Is(err, ErrPasswordPolicy),
		errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrRoleInvalid):
		return auditErrValidation
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrAccountCodeTaken),
		errors.Is(err, ErrAccountCodeExhausted):
		return auditErrDuplicate
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrAccountUnverified):
		return auditErrUnverified
	case errors.Is(err, ErrAccountDeleted):
		return auditErrDeleted
	case errors.Is(err, ErrCodeInvalid), errors.Is(err, ErrAlreadyVerified):
		return auditErrCodeInvalid
	case errors.Is(err, ErrCodeExpired):
		return auditErrCodeExpired
	case errors.Is(err, ErrResetTokenInvalid):
		return auditErrResetInvalid
	case errors.Is(err, ErrRefreshInvalid):
		return auditErrRefreshInvalid
	case errors.Is(err, ErrSessionNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, ErrSessionExpired):
		return auditErrSessionExpired
	case errors.Is(err, ErrInsufficientFunds):
		return auditErrInsufficientFunds
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

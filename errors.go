package goShield

import "errors"

var (
	// ErrUnauthorized is returned when an access token fails signature or expiry checks.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned for any credential mismatch. The message is
	// deliberately generic and never reveals which field was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when no non-deleted user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registration hits the email uniqueness constraint.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAccountCodeTaken is returned by stores when an insert hits the account-code
	// uniqueness constraint. Registration retries with a fresh code on this error.
	ErrAccountCodeTaken = errors.New("account code already taken")
	// ErrAccountCodeExhausted is returned when account-code generation exhausts its
	// bounded retry budget against the store uniqueness constraint.
	ErrAccountCodeExhausted = errors.New("account code generation exhausted")
	// ErrAccountUnverified is returned when a flow requires a verified email first.
	ErrAccountUnverified = errors.New("account unverified")
	// ErrAccountDeleted is returned when the target account is tombstoned.
	ErrAccountDeleted = errors.New("account deleted")
	// ErrAddressBlocked is returned when the caller's address is on the block list.
	// The message never discloses the reason or the failure threshold.
	ErrAddressBlocked = errors.New("forbidden")
	// ErrRateLimited is returned when a flow exceeds its attempt budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrValidation is returned for malformed input. Field detail is safe to return.
	ErrValidation = errors.New("validation failed")
	// ErrPasswordPolicy is returned when a new password violates the policy.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrCodeInvalid is returned when a verification code is absent or does not match.
	ErrCodeInvalid = errors.New("invalid verification code")
	// ErrCodeExpired is returned when a verification code is past its expiry.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrAlreadyVerified is returned when verifying an already-verified account.
	ErrAlreadyVerified = errors.New("email already verified")
	// ErrResetTokenInvalid covers both unknown and expired reset tokens so callers
	// cannot distinguish the two cases.
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
	// ErrRefreshInvalid is returned when a refresh token does not match the stored
	// value, including after rotation by a concurrent request.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrSessionNotFound is returned when no active session matches the token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned once for a session reaped by lazy expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrInsufficientFunds is returned when a debit would take a wallet negative.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	// ErrInvalidAmount is returned for non-positive wallet adjustment amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrRoleInvalid is returned for roles outside the recognized set.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrTokenInvalid is returned for structurally invalid bearer tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrEngineNotReady is returned when an Engine is used before Build completed.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrStoreUnavailable wraps record-store infrastructure failures. The wrapped
	// detail is logged, never echoed to callers.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// HTTPStatus maps an engine error to the HTTP status class the uniform response
// envelope uses. Unknown errors map to 500; callers must not echo their detail.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrPasswordPolicy),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrCodeInvalid),
		errors.Is(err, ErrCodeExpired),
		errors.Is(err, ErrAlreadyVerified),
		errors.Is(err, ErrResetTokenInvalid),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrRoleInvalid):
		return 400
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrRefreshInvalid),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrSessionExpired):
		return 401
	case errors.Is(err, ErrAddressBlocked),
		errors.Is(err, ErrAccountUnverified),
		errors.Is(err, ErrAccountDeleted):
		return 403
	case errors.Is(err, ErrUserNotFound):
		return 404
	case errors.Is(err, ErrRateLimited):
		return 429
	default:
		return 500
	}
}

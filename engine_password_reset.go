package goShield

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goShield/internal"
	"github.com/MrEthical07/goShield/internal/validate"
	"github.com/MrEthical07/goShield/notify"
	"github.com/MrEthical07/goShield/session"
)

// ForgotPassword starts a password reset. It reports success whether or not
// the email is registered, so callers cannot enumerate accounts. When the
// account exists, a fresh single-use token is issued and any previous one is
// invalidated.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	if err := validate.Field("email", email, validate.Required{}, validate.EmailShape{}); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := e.users.GetUserByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Deliberate success: the response must not reveal whether the
			// account exists.
			return nil
		}
		return err
	}

	secret, err := internal.NewResetSecret()
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(e.config.Reset.TTL)
	if err := e.users.SetResetSecret(ctx, user.UserID, internal.HashSecret(secret[:]), expiresAt); err != nil {
		return err
	}

	e.metricInc(MetricResetRequest)
	e.recordActivity(ctx, &session.Activity{
		UserID: user.UserID,
		Type:   session.ActivityResetRequested,
		Status: session.StatusSuccess,
	})
	e.emitAudit(ctx, auditEventResetRequest, true, user.UserID, "", nil, nil)

	e.notifyBestEffort(ctx, Notification{
		Recipient: user.Email,
		Template:  notify.TemplatePasswordReset,
		Data:      map[string]string{"token": internal.EncodeResetToken(secret)},
	})

	return nil
}

// ResetPassword completes a reset. Unknown and expired tokens are collapsed
// into one error. Success changes the credential, consumes the token, revokes
// the refresh secret, and invalidates every active session, so a session
// token from another device is rejected afterward.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	if len(newPassword) < e.config.Password.MinLength {
		return fmt.Errorf("%w: minimum %d characters", ErrPasswordPolicy, e.config.Password.MinLength)
	}

	secret, err := internal.DecodeResetToken(token)
	if err != nil {
		e.resetFailure(ctx, "")
		return ErrResetTokenInvalid
	}

	user, err := e.users.GetUserByResetHash(ctx, internal.HashSecret(secret[:]))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.resetFailure(ctx, "")
			return ErrResetTokenInvalid
		}
		return err
	}
	if time.Now().After(user.ResetExpiresAt) {
		e.resetFailure(ctx, user.UserID)
		return ErrResetTokenInvalid
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := e.users.UpdatePasswordHash(ctx, user.UserID, hash); err != nil {
		return err
	}
	if err := e.users.ClearResetSecret(ctx, user.UserID); err != nil {
		return err
	}
	if err := e.users.ClearRefreshSecret(ctx, user.UserID); err != nil {
		return err
	}

	flipped, err := e.sessions.InvalidateAllForUser(ctx, user.UserID)
	if err != nil {
		return err
	}
	for i := 0; i < flipped; i++ {
		e.metricInc(MetricSessionInvalidated)
	}

	e.metricInc(MetricResetSuccess)
	e.recordActivity(ctx, &session.Activity{
		UserID: user.UserID,
		Type:   session.ActivityResetCompleted,
		Status: session.StatusSuccess,
		Detail: map[string]string{"sessions_invalidated": fmt.Sprintf("%d", flipped)},
	})
	e.emitAudit(ctx, auditEventResetConfirm, true, user.UserID, "", nil, nil)

	e.notifyBestEffort(ctx, Notification{
		Recipient: user.Email,
		Template:  notify.TemplatePasswordChanged,
	})

	return nil
}

func (e *Engine) resetFailure(ctx context.Context, userID string) {
	e.metricInc(MetricResetFailure)
	e.emitAudit(ctx, auditEventResetConfirm, false, userID, "", ErrResetTokenInvalid, nil)
	if userID != "" {
		e.recordActivity(ctx, &session.Activity{
			UserID: userID,
			Type:   session.ActivityResetCompleted,
			Status: session.StatusFailed,
		})
	}
}

package goShield

import (
	"context"
	"time"

	"github.com/MrEthical07/goShield/internal/validate"
	"github.com/MrEthical07/goShield/notify"
	"github.com/MrEthical07/goShield/session"
)

// VerifyEmail confirms ownership of the registered address. The code is
// single-use: success clears it, flips the account to verified, and sends the
// welcome notification.
func (e *Engine) VerifyEmail(ctx context.Context, email, code string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	user, err := e.users.GetUserByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		return err
	}

	if user.Verified {
		return ErrAlreadyVerified
	}
	if user.VerificationCode == "" || code == "" || user.VerificationCode != code {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationConfirm, false, user.UserID, "", ErrCodeInvalid, nil)
		return ErrCodeInvalid
	}
	if time.Now().After(user.VerificationExpiresAt) {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationConfirm, false, user.UserID, "", ErrCodeExpired, nil)
		return ErrCodeExpired
	}

	if err := e.users.MarkVerified(ctx, user.UserID, time.Now().UTC()); err != nil {
		return err
	}

	e.metricInc(MetricVerificationSuccess)
	e.recordActivity(ctx, &session.Activity{
		UserID: user.UserID,
		Type:   session.ActivityEmailVerified,
		Status: session.StatusSuccess,
	})
	e.emitAudit(ctx, auditEventVerificationConfirm, true, user.UserID, "", nil, nil)

	// The welcome lands once ownership of the address is proven, not at
	// registration.
	e.notifyBestEffort(ctx, Notification{
		Recipient: user.Email,
		Template:  notify.TemplateWelcome,
	})

	return nil
}

// ResendVerification issues a fresh code, overwriting any pending one. The
// previous code stops working immediately.
func (e *Engine) ResendVerification(ctx context.Context, email string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	user, err := e.users.GetUserByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}

	code, err := e.issueVerificationCode(ctx, user.UserID)
	if err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventVerificationRequest, true, user.UserID, "", nil, nil)
	e.notifyBestEffort(ctx, Notification{
		Recipient: user.Email,
		Template:  notify.TemplateVerification,
		Data:      map[string]string{"code": code},
	})

	return nil
}

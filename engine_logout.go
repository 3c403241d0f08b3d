package goShield

import (
	"context"
	"errors"

	"github.com/MrEthical07/goShield/session"
)

// Logout ends the session carried by the access token and revokes the user's
// refresh secret. Logging out an already-inactive session succeeds; the
// operation is idempotent.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	claims, err := e.tokens.ParseAccess(accessToken)
	if err != nil {
		return ErrTokenInvalid
	}

	if err := e.users.ClearRefreshSecret(ctx, claims.UID); err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}

	err = e.sessions.Invalidate(ctx, claims.SID)
	switch {
	case err == nil:
		e.metricInc(MetricSessionInvalidated)
	case errors.Is(err, session.ErrNotFound):
		// Already gone; logout stays idempotent.
	default:
		return err
	}

	e.metricInc(MetricLogout)
	e.recordActivity(ctx, &session.Activity{
		UserID:    claims.UID,
		SessionID: claims.SID,
		Type:      session.ActivityLogout,
		Status:    session.StatusSuccess,
	})
	e.emitAudit(ctx, auditEventLogoutSession, true, claims.UID, claims.SID, nil, nil)

	return nil
}

// LogoutAll ends every active session of a user and revokes the refresh
// secret. Intended for "sign out everywhere" and admin remediation.
func (e *Engine) LogoutAll(ctx context.Context, userID string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	if err := e.users.ClearRefreshSecret(ctx, userID); err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}

	flipped, err := e.sessions.InvalidateAllForUser(ctx, userID)
	if err != nil {
		return err
	}
	for i := 0; i < flipped; i++ {
		e.metricInc(MetricSessionInvalidated)
	}

	e.metricInc(MetricLogout)
	e.recordActivity(ctx, &session.Activity{
		UserID: userID,
		Type:   session.ActivityLogout,
		Status: session.StatusSuccess,
		Detail: map[string]string{"scope": "all"},
	})
	e.emitAudit(ctx, auditEventLogoutAll, true, userID, "", nil, nil)

	return nil
}

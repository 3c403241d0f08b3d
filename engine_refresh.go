package goShield

import (
	"context"
	"errors"

	"github.com/MrEthical07/goShield/internal"
	"github.com/MrEthical07/goShield/session"
)

// Refresh exchanges a valid refresh token for a new token pair, rotating the
// stored refresh secret in the same step. Rotation is a store-level
// compare-and-swap: when two requests race with the same token, exactly one
// wins and the other is rejected as reuse. The session carried by the token
// must still be active.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	sessionID, secret, err := internal.DecodeRefreshToken(refreshToken)
	if err != nil {
		return nil, e.refreshFailure(ctx, "", "", ErrRefreshInvalid)
	}
	currentHash := internal.HashSecret(secret[:])

	user, err := e.users.GetUserByRefreshHash(ctx, currentHash)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, e.refreshFailure(ctx, "", sessionID, ErrRefreshInvalid)
		}
		return nil, err
	}

	sess, err := e.sessions.Validate(ctx, sessionID)
	if err != nil {
		mapped := mapSessionErr(err)
		if errors.Is(mapped, ErrSessionNotFound) || errors.Is(mapped, ErrSessionExpired) {
			if errors.Is(mapped, ErrSessionExpired) {
				e.metricInc(MetricSessionExpired)
			}
			return nil, e.refreshFailure(ctx, user.UserID, sessionID, ErrRefreshInvalid)
		}
		return nil, mapped
	}
	if sess.UserID != user.UserID {
		return nil, e.refreshFailure(ctx, user.UserID, sessionID, ErrRefreshInvalid)
	}

	nextSecret, err := internal.NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	nextHash := internal.HashSecret(nextSecret[:])

	rotated, err := e.users.RotateRefreshSecret(ctx, user.UserID, currentHash, nextHash)
	if err != nil {
		return nil, err
	}
	if !rotated {
		// A concurrent request already rotated this token.
		e.metricInc(MetricRefreshReuseDetected)
		e.emitAudit(ctx, auditEventRefreshReuseDetected, false, user.UserID, sessionID, ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}

	access, err := e.tokens.CreateAccess(user.UserID, sessionID, string(user.Role))
	if err != nil {
		return nil, err
	}
	newRefresh, err := internal.EncodeRefreshToken(sessionID, nextSecret)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.recordActivity(ctx, &session.Activity{
		UserID:    user.UserID,
		SessionID: sessionID,
		Type:      session.ActivityTokenRefreshed,
		Status:    session.StatusSuccess,
	})
	e.emitAudit(ctx, auditEventRefreshSuccess, true, user.UserID, sessionID, nil, nil)

	return &TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

func (e *Engine) refreshFailure(ctx context.Context, userID, sessionID string, err error) error {
	e.metricInc(MetricRefreshFailure)
	e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, sessionID, err, nil)
	return err
}

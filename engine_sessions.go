package goShield

import (
	"context"
	"errors"

	"github.com/MrEthical07/goShield/session"
)

// ValidateSession checks a session against the store. Unlike
// [Engine.ValidateAccess] this observes logout and lazy expiry: the first
// validation past the fixed expiry flips the session inactive, and every
// later validation reports the same error.
func (e *Engine) ValidateSession(ctx context.Context, sessionID string) (*session.Session, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	sess, err := e.sessions.Validate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrExpired) {
			e.metricInc(MetricSessionExpired)
		}
		return nil, mapSessionErr(err)
	}
	return sess, nil
}

// InvalidateSession flips one session to inactive, regardless of owner.
// Intended for admin remediation; user-facing logout goes through
// [Engine.Logout].
func (e *Engine) InvalidateSession(ctx context.Context, sessionID string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}

	if err := e.sessions.Invalidate(ctx, sessionID); err != nil {
		return mapSessionErr(err)
	}
	e.metricInc(MetricSessionInvalidated)
	return nil
}

// Sessions returns every session row recorded for a user, including expired
// and invalidated ones, newest first.
func (e *Engine) Sessions(ctx context.Context, userID string) ([]*session.Session, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	return e.sessions.ListForUser(ctx, userID)
}

// Devices returns every device recorded for a user.
func (e *Engine) Devices(ctx context.Context, userID string) ([]*session.Device, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	return e.sessions.DevicesForUser(ctx, userID)
}

// ActivityHistory returns up to limit activity trail entries for a user,
// newest first.
func (e *Engine) ActivityHistory(ctx context.Context, userID string, limit int) ([]*session.Activity, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	return e.sessions.ActivityForUser(ctx, userID, limit)
}

package goShield

import (
	"context"
	"time"

	"github.com/MrEthical07/goShield/internal"
)

// issueTokenPair signs a fresh access token and installs a brand-new refresh
// secret for the user. The opaque refresh token carries the session id plus
// the raw secret; only the secret's SHA-256 digest is stored. A user has a
// single active refresh value, so issuing a pair supersedes any previous one.
func (e *Engine) issueTokenPair(ctx context.Context, userID, sessionID string, role Role) (TokenPair, error) {
	access, err := e.tokens.CreateAccess(userID, sessionID, string(role))
	if err != nil {
		return TokenPair{}, err
	}

	secret, err := internal.NewRefreshSecret()
	if err != nil {
		return TokenPair{}, err
	}
	if err := e.users.SetRefreshSecret(ctx, userID, internal.HashSecret(secret[:])); err != nil {
		return TokenPair{}, err
	}

	refresh, err := internal.EncodeRefreshToken(sessionID, secret)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateAccess checks an access token cryptographically and returns its
// identity claims. This is the request hot path: no store access, no session
// lookup. Pair it with [Engine.ValidateSession] on routes that must observe
// logout immediately.
func (e *Engine) ValidateAccess(ctx context.Context, tokenStr string) (*AuthResult, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	claims, err := e.tokens.ParseAccess(tokenStr)
	e.metricObserve(MetricValidateLatency, time.Since(start))
	if err != nil {
		return nil, ErrUnauthorized
	}

	return &AuthResult{
		UserID:    claims.UID,
		SessionID: claims.SID,
		Role:      Role(claims.Role),
	}, nil
}

package goShield

import (
	"context"
	"errors"
	"fmt"
	"log"

	internalguard "github.com/MrEthical07/goShield/internal/guard"
	"github.com/MrEthical07/goShield/internal/validate"
	"github.com/MrEthical07/goShield/session"
)

// Login authenticates a credential pair and opens a session. The block-list
// gate runs before any credential work; every credential failure feeds the
// brute-force counter for the caller's address. A suspicious login still
// succeeds; the anomaly is reported on the result, recorded in the trail, and
// notified out of band.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	if err := validate.Field("email", email, validate.Required{}, validate.EmailShape{}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	meta := requestMetaFromContext(ctx)
	if err := e.guard.Admit(ctx, meta.Address); err != nil {
		if !errors.Is(err, internalguard.ErrAddressBlocked) {
			// Block-store trouble is an infrastructure fault, not a verdict on
			// the caller.
			log.Printf("goShield: block-list check for %s failed: %v", meta.Address, err)
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		e.metricInc(MetricLoginBlocked)
		e.emitAudit(ctx, auditEventLoginBlocked, false, "", "", ErrAddressBlocked, nil)
		e.recordActivity(ctx, &session.Activity{
			Type:   session.ActivityLoginFailed,
			Status: session.StatusFailed,
			Detail: map[string]string{"reason": "address_blocked"},
		})
		return nil, ErrAddressBlocked
	}

	user, err := e.users.GetUserByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Unknown email and wrong password are indistinguishable to the
			// caller.
			e.loginFailure(ctx, "", meta, "unknown_email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := e.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		e.loginFailure(ctx, user.UserID, meta, "password_mismatch")
		return nil, ErrInvalidCredentials
	}

	if !user.Verified {
		e.loginFailure(ctx, user.UserID, meta, "unverified")
		return nil, ErrAccountUnverified
	}

	if err := e.guard.RecordSuccess(ctx, meta.Address); err != nil {
		log.Printf("goShield: failure counter reset for %s failed: %v", meta.Address, err)
	}

	e.maybeUpgradeHash(ctx, user, password)

	sess, suspicion, err := e.sessions.Create(ctx, user.UserID, meta)
	if err != nil {
		return nil, err
	}
	e.metricInc(MetricSessionCreated)

	tokens, err := e.issueTokenPair(ctx, user.UserID, sess.SessionID, user.Role)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.recordActivity(ctx, &session.Activity{
		UserID:    user.UserID,
		SessionID: sess.SessionID,
		Type:      session.ActivityLogin,
		Status:    session.StatusSuccess,
		Location:  sess.Location,
	})
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.UserID, sess.SessionID, nil, nil)

	if suspicion.Any() {
		e.flagSuspiciousLogin(ctx, user, sess, meta, suspicion)
	}

	return &LoginResult{
		UserID:     user.UserID,
		Session:    sess,
		Tokens:     tokens,
		Suspicious: suspicion.Any(),
		Suspicion:  suspicion,
	}, nil
}

// loginFailure feeds the brute-force counter and records the failed attempt.
// Crossing the threshold inserts a persistent block entry.
func (e *Engine) loginFailure(ctx context.Context, userID string, meta session.RequestMeta, reason string) {
	e.metricInc(MetricLoginFailure)

	crossed, err := e.guard.RecordFailure(ctx, meta.Address)
	if err != nil {
		log.Printf("goShield: failure count for %s failed: %v", meta.Address, err)
	}
	if crossed {
		e.metricInc(MetricAddressBlocked)
		e.emitAudit(ctx, auditEventAddressBlocked, true, userID, "", nil, func() map[string]string {
			return map[string]string{"address": meta.Address}
		})
		e.recordActivity(ctx, &session.Activity{
			UserID: userID,
			Type:   session.ActivityAddressBlocked,
			Status: session.StatusSuccess,
			Detail: map[string]string{"address": meta.Address},
		})
	}

	e.emitAudit(ctx, auditEventLoginFailure, false, userID, "", ErrInvalidCredentials, func() map[string]string {
		return map[string]string{"reason": reason}
	})
	e.recordActivity(ctx, &session.Activity{
		UserID: userID,
		Type:   session.ActivityLoginFailed,
		Status: session.StatusFailed,
		Detail: map[string]string{"reason": reason},
	})
}

// flagSuspiciousLogin records and notifies an anomalous login. Informational
// only; the login has already succeeded.
func (e *Engine) flagSuspiciousLogin(ctx context.Context, user UserRecord, sess *session.Session, meta session.RequestMeta, suspicion session.Suspicion) {
	e.metricInc(MetricLoginSuspicious)

	detail := map[string]string{
		"new_device": fmt.Sprintf("%t", suspicion.NewDevice),
	}
	if suspicion.DistantLocation {
		detail["nearest_known_km"] = fmt.Sprintf("%.0f", suspicion.NearestKnownKM)
	}

	e.recordActivity(ctx, &session.Activity{
		UserID:    user.UserID,
		SessionID: sess.SessionID,
		Type:      session.ActivitySuspiciousLogin,
		Status:    session.StatusSuccess,
		Location:  sess.Location,
		Detail:    detail,
	})
	e.emitAudit(ctx, auditEventLoginSuspicious, true, user.UserID, sess.SessionID, nil, func() map[string]string {
		return detail
	})
	e.notifyBestEffort(ctx, suspiciousLoginNotification(user.Email, sess, meta))
}

// maybeUpgradeHash rehashes the credential after a successful verify when the
// stored hash uses weaker parameters. Best effort: the login proceeds on any
// failure here.
func (e *Engine) maybeUpgradeHash(ctx context.Context, user UserRecord, password string) {
	if !e.config.Password.UpgradeOnLogin {
		return
	}

	needs, err := e.hasher.NeedsRehash(user.PasswordHash)
	if err != nil || !needs {
		return
	}

	newHash, err := e.hasher.Hash(password)
	if err != nil {
		return
	}
	if err := e.users.UpdatePasswordHash(ctx, user.UserID, newHash); err != nil {
		log.Printf("goShield: hash upgrade for %s failed: %v", user.UserID, err)
	}
}

package goShield

import (
	"context"
	"time"

	"github.com/MrEthical07/goShield/session"
)

// Account returns the account record for a non-deleted user, with challenge
// and credential material blanked.
func (e *Engine) Account(ctx context.Context, userID string) (UserRecord, error) {
	if e == nil || e.users == nil {
		return UserRecord{}, ErrEngineNotReady
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return UserRecord{}, err
	}
	return redactRecord(user), nil
}

// DeleteAccount tombstones an account. The record is kept, every session is
// invalidated, and the refresh secret is revoked; lookups no longer match the
// user until restored.
func (e *Engine) DeleteAccount(ctx context.Context, userID string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	// Revoke the refresh secret first; the tombstoned record is excluded from
	// the mutation path afterwards.
	if err := e.users.ClearRefreshSecret(ctx, user.UserID); err != nil {
		return err
	}
	if err := e.users.SoftDeleteUser(ctx, user.UserID, time.Now().UTC()); err != nil {
		return err
	}

	flipped, err := e.sessions.InvalidateAllForUser(ctx, user.UserID)
	if err != nil {
		return err
	}
	for i := 0; i < flipped; i++ {
		e.metricInc(MetricSessionInvalidated)
	}

	e.recordActivity(ctx, &session.Activity{
		UserID: user.UserID,
		Type:   session.ActivityAccountDeleted,
		Status: session.StatusSuccess,
	})
	e.emitAudit(ctx, auditEventAccountDeleted, true, user.UserID, "", nil, nil)

	return nil
}

// RestoreAccount clears the tombstone on a soft-deleted account. Restoring an
// account that was never deleted is a no-op; restoring one whose email was
// since claimed by a live account fails with ErrEmailTaken.
func (e *Engine) RestoreAccount(ctx context.Context, userID string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	user, err := e.users.GetUserByIDIncludeDeleted(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Tombstoned() {
		return nil
	}

	if err := e.users.RestoreUser(ctx, user.UserID); err != nil {
		return err
	}

	e.recordActivity(ctx, &session.Activity{
		UserID: user.UserID,
		Type:   session.ActivityAccountRestored,
		Status: session.StatusSuccess,
	})
	e.emitAudit(ctx, auditEventAccountRestored, true, user.UserID, "", nil, nil)

	return nil
}

// ChangeRole sets a user's role to one of the recognized values.
func (e *Engine) ChangeRole(ctx context.Context, userID string, role Role) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	if role != RoleUser && role != RoleAdmin {
		return ErrRoleInvalid
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == role {
		return nil
	}

	if err := e.users.UpdateRole(ctx, user.UserID, role); err != nil {
		return err
	}

	e.recordActivity(ctx, &session.Activity{
		UserID: user.UserID,
		Type:   session.ActivityRoleChanged,
		Status: session.StatusSuccess,
		Detail: map[string]string{"from": string(user.Role), "to": string(role)},
	})
	e.emitAudit(ctx, auditEventRoleChanged, true, user.UserID, "", nil, func() map[string]string {
		return map[string]string{"from": string(user.Role), "to": string(role)}
	})

	return nil
}

func redactRecord(user UserRecord) UserRecord {
	user.PasswordHash = ""
	user.VerificationCode = ""
	user.ResetSecretHash = [32]byte{}
	user.RefreshSecretHash = [32]byte{}
	return user
}

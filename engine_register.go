package goShield

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrEthical07/goShield/internal"
	internalguard "github.com/MrEthical07/goShield/internal/guard"
	"github.com/MrEthical07/goShield/internal/validate"
	"github.com/MrEthical07/goShield/notify"
	"github.com/MrEthical07/goShield/session"
)

// Register creates an unverified account, opens its first session, issues a
// token pair, and sends the verification code. The caller's address must pass
// the block-list gate before any other work happens.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}
	if len(req.Password) < e.config.Password.MinLength {
		return nil, fmt.Errorf("%w: minimum %d characters", ErrPasswordPolicy, e.config.Password.MinLength)
	}

	meta := requestMetaFromContext(ctx)
	if err := e.guard.Admit(ctx, meta.Address); err != nil {
		if !errors.Is(err, internalguard.ErrAddressBlocked) {
			log.Printf("goShield: block-list check for %s failed: %v", meta.Address, err)
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		e.metricInc(MetricLoginBlocked)
		e.emitAudit(ctx, auditEventRegistrationFailure, false, "", "", ErrAddressBlocked, nil)
		return nil, ErrAddressBlocked
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	record, err := e.createUserWithFreshCode(ctx, req, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			e.metricInc(MetricRegistrationDuplicate)
			e.emitAudit(ctx, auditEventRegistrationFailure, false, "", "", err, nil)
		}
		return nil, err
	}

	code, err := e.issueVerificationCode(ctx, record.UserID)
	if err != nil {
		return nil, err
	}

	sess, _, err := e.sessions.Create(ctx, record.UserID, meta)
	if err != nil {
		return nil, err
	}
	e.metricInc(MetricSessionCreated)

	tokens, err := e.issueTokenPair(ctx, record.UserID, sess.SessionID, record.Role)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRegistrationSuccess)
	e.recordActivity(ctx, &session.Activity{
		UserID:    record.UserID,
		SessionID: sess.SessionID,
		Type:      session.ActivityRegistration,
		Status:    session.StatusSuccess,
		Location:  sess.Location,
	})
	e.emitAudit(ctx, auditEventRegistrationSuccess, true, record.UserID, sess.SessionID, nil, nil)

	e.notifyBestEffort(ctx, Notification{
		Recipient: record.Email,
		Template:  notify.TemplateVerification,
		Data:      map[string]string{"code": code},
	})

	return &RegisterResult{
		UserID:      record.UserID,
		AccountCode: record.AccountCode,
		Session:     sess,
		Tokens:      tokens,
	}, nil
}

// createUserWithFreshCode inserts the record, retrying with a new account code
// when the uniqueness constraint rejects one. The retry budget is bounded;
// exhaustion surfaces as a definite error instead of looping.
func (e *Engine) createUserWithFreshCode(ctx context.Context, req RegisterRequest, passwordHash string) (UserRecord, error) {
	record := UserRecord{
		UserID:               uuid.NewString(),
		Email:                validate.NormalizeEmail(req.Email),
		Phone:                req.Phone,
		PasswordHash:         passwordHash,
		Role:                 RoleUser,
		WalletBalance:        decimal.Zero,
		IdentificationStatus: IdentificationNone,
		CreatedAt:            time.Now().UTC(),
	}

	for attempt := 0; attempt < e.config.Account.CodeRetryAttempts; attempt++ {
		code, err := internal.NewAccountCode(e.config.Account.AccountCodeLength)
		if err != nil {
			return UserRecord{}, err
		}
		record.AccountCode = code

		err = e.users.CreateUser(ctx, record)
		if err == nil {
			return record, nil
		}
		if errors.Is(err, ErrAccountCodeTaken) {
			continue
		}
		return UserRecord{}, err
	}

	return UserRecord{}, ErrAccountCodeExhausted
}

// issueVerificationCode overwrites any pending code with a fresh one.
func (e *Engine) issueVerificationCode(ctx context.Context, userID string) (string, error) {
	code, err := internal.NewOTP(e.config.Verification.OTPDigits)
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().UTC().Add(e.config.Verification.TTL)
	if err := e.users.SetVerificationCode(ctx, userID, code, expiresAt); err != nil {
		return "", err
	}

	e.metricInc(MetricVerificationRequest)
	return code, nil
}

func validateRegisterRequest(req RegisterRequest) error {
	checks := []error{
		validate.Field("email", req.Email, validate.Required{}, validate.EmailShape{}),
		validate.Field("password", req.Password, validate.Required{}),
		validate.Field("phone", req.Phone, validate.PhoneShape{}),
	}
	for _, err := range checks {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	return nil
}

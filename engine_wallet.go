package goShield

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/MrEthical07/goShield/session"
)

// CreditWallet adds a positive amount to a user's wallet and returns the
// balance after the write. The adjustment is a single-row atomic operation in
// the store.
func (e *Engine) CreditWallet(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if e == nil || e.users == nil {
		return decimal.Zero, ErrEngineNotReady
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	balance, err := e.users.AdjustWalletBalance(ctx, userID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	e.metricInc(MetricWalletCredit)
	e.recordWalletActivity(ctx, userID, "credit", amount, balance)
	e.emitAudit(ctx, auditEventWalletCredit, true, userID, "", nil, nil)

	return balance, nil
}

// DebitWallet subtracts a positive amount from a user's wallet. A debit that
// would take the balance negative is rejected atomically by the store and
// leaves the balance untouched.
func (e *Engine) DebitWallet(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if e == nil || e.users == nil {
		return decimal.Zero, ErrEngineNotReady
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	balance, err := e.users.AdjustWalletBalance(ctx, userID, amount.Neg())
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			e.metricInc(MetricWalletRejected)
			e.emitAudit(ctx, auditEventWalletRejected, false, userID, "", err, nil)
		}
		return decimal.Zero, err
	}

	e.metricInc(MetricWalletDebit)
	e.recordWalletActivity(ctx, userID, "debit", amount, balance)
	e.emitAudit(ctx, auditEventWalletDebit, true, userID, "", nil, nil)

	return balance, nil
}

// WalletBalance reads the current balance.
func (e *Engine) WalletBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if e == nil || e.users == nil {
		return decimal.Zero, ErrEngineNotReady
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return user.WalletBalance, nil
}

func (e *Engine) recordWalletActivity(ctx context.Context, userID, direction string, amount, balance decimal.Decimal) {
	e.recordActivity(ctx, &session.Activity{
		UserID: userID,
		Type:   session.ActivityWalletAdjusted,
		Status: session.StatusSuccess,
		Detail: map[string]string{
			"direction": direction,
			"amount":    amount.String(),
			"balance":   balance.String(),
		},
	})
}

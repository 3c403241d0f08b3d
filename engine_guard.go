package goShield

import (
	"context"
	"errors"
	"fmt"

	internalguard "github.com/MrEthical07/goShield/internal/guard"
)

// IsAddressBlocked reports whether an address is on the persistent block
// list. A block-store failure is returned as an error, not a verdict.
func (e *Engine) IsAddressBlocked(ctx context.Context, address string) (bool, error) {
	if e == nil || e.guard == nil {
		return false, ErrEngineNotReady
	}
	switch err := e.guard.Admit(ctx, address); {
	case err == nil:
		return false, nil
	case errors.Is(err, internalguard.ErrAddressBlocked):
		return true, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

// UnblockAddress removes an address from the block list. Blocks never expire
// on their own; this is the only recovery path.
func (e *Engine) UnblockAddress(ctx context.Context, address string) error {
	if e == nil || e.guard == nil {
		return ErrEngineNotReady
	}

	if err := e.guard.Unblock(ctx, address); err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventAddressUnblocked, true, "", "", nil, func() map[string]string {
		return map[string]string{"address": address}
	})
	return nil
}

// BlockedAddresses lists every block-list entry.
func (e *Engine) BlockedAddresses(ctx context.Context) ([]BlockedAddress, error) {
	if e == nil || e.guard == nil {
		return nil, ErrEngineNotReady
	}
	return e.guard.Blocked(ctx)
}

package guard

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goShield/internal/rate"
)

// BlockReason is the fixed reason recorded on threshold-triggered blocks.
const BlockReason = "too many failed login attempts"

// ErrAddressBlocked is returned by Admit for a listed address.
var ErrAddressBlocked = errors.New("address blocked")

// BlockedAddress is one block-list entry. Entries never auto-expire.
type BlockedAddress struct {
	Address   string
	Reason    string
	BlockedAt time.Time
}

// BlockStore persists the address block list. Insert must be idempotent: blocking
// an already-blocked address is not an error.
type BlockStore interface {
	IsBlocked(ctx context.Context, address string) (bool, error)
	Insert(ctx context.Context, entry BlockedAddress) error
	Remove(ctx context.Context, address string) error
	List(ctx context.Context) ([]BlockedAddress, error)
}

// Config holds guard tuning parameters.
type Config struct {
	FailureThreshold int
	FailureWindow    time.Duration
}

// Guard is the brute-force admission gate.
type Guard struct {
	counter *rate.Counter
	blocks  BlockStore
	config  Config
}

// New assembles a Guard from its failure counter and block store.
func New(counter *rate.Counter, blocks BlockStore, cfg Config) *Guard {
	return &Guard{
		counter: counter,
		blocks:  blocks,
		config:  cfg,
	}
}

// Admit rejects listed addresses before any credential work happens. An empty
// address is admitted. Block-store errors propagate to the caller.
func (g *Guard) Admit(ctx context.Context, address string) error {
	if g == nil || address == "" {
		return nil
	}

	blocked, err := g.blocks.IsBlocked(ctx, address)
	if err != nil {
		return err
	}
	if blocked {
		return ErrAddressBlocked
	}

	return nil
}

// RecordFailure counts one failed attempt and inserts a block entry when the
// windowed total reaches the threshold. It reports whether this call crossed it.
func (g *Guard) RecordFailure(ctx context.Context, address string) (bool, error) {
	if g == nil || address == "" {
		return false, nil
	}

	count, err := g.counter.Increment(ctx, address)
	if err != nil {
		return false, err
	}
	if count < int64(g.config.FailureThreshold) {
		return false, nil
	}

	err = g.blocks.Insert(ctx, BlockedAddress{
		Address:   address,
		Reason:    BlockReason,
		BlockedAt: time.Now(),
	})
	if err != nil {
		return false, err
	}

	return count == int64(g.config.FailureThreshold), nil
}

// RecordSuccess clears the failure counter for the address. The block list is
// untouched: a blocked address stays blocked.
func (g *Guard) RecordSuccess(ctx context.Context, address string) error {
	if g == nil || address == "" {
		return nil
	}
	return g.counter.Reset(ctx, address)
}

// Unblock removes an address from the block list. Administrative use only.
func (g *Guard) Unblock(ctx context.Context, address string) error {
	if g == nil {
		return nil
	}
	return g.blocks.Remove(ctx, address)
}

// Blocked lists the current block-list entries.
func (g *Guard) Blocked(ctx context.Context) ([]BlockedAddress, error) {
	if g == nil {
		return nil, nil
	}
	return g.blocks.List(ctx)
}

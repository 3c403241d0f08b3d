package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrEthical07/goShield/internal/guard"
)

// BlockStore is a pgx-backed guard.BlockStore. Entries never expire on their
// own; only Remove clears them.
type BlockStore struct {
	pool *pgxpool.Pool
}

// NewBlockStore creates a BlockStore on the given pool.
func NewBlockStore(pool *pgxpool.Pool) *BlockStore {
	return &BlockStore{pool: pool}
}

func (s *BlockStore) IsBlocked(ctx context.Context, address string) (bool, error) {
	var blocked bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM shield_blocked_addresses WHERE address = $1)
	`, address).Scan(&blocked)
	return blocked, err
}

func (s *BlockStore) Insert(ctx context.Context, entry guard.BlockedAddress) error {
	// Re-blocking keeps the original entry so blocked_at marks the first block.
	_, err := s.pool.Exec(ctx, `
		INSERT INTO shield_blocked_addresses (address, reason, blocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO NOTHING
	`, entry.Address, entry.Reason, entry.BlockedAt)
	return err
}

func (s *BlockStore) Remove(ctx context.Context, address string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM shield_blocked_addresses WHERE address = $1
	`, address)
	return err
}

func (s *BlockStore) List(ctx context.Context) ([]guard.BlockedAddress, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT address, reason, blocked_at
		FROM shield_blocked_addresses
		ORDER BY blocked_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []guard.BlockedAddress
	for rows.Next() {
		var entry guard.BlockedAddress
		if err := rows.Scan(&entry.Address, &entry.Reason, &entry.BlockedAt); err != nil {
			return nil, err
		}
		items = append(items, entry)
	}
	return items, rows.Err()
}

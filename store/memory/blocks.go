package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/MrEthical07/goShield/internal/guard"
)

// BlockStore is an in-memory [guard.BlockStore]. Safe for concurrent use.
type BlockStore struct {
	mu      sync.Mutex
	entries map[string]guard.BlockedAddress
}

// NewBlockStore creates an empty block store.
func NewBlockStore() *BlockStore {
	return &BlockStore{entries: make(map[string]guard.BlockedAddress)}
}

// IsBlocked reports whether the address is listed.
func (s *BlockStore) IsBlocked(ctx context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[address]
	return ok, nil
}

// Insert adds an entry. Re-blocking an already listed address keeps the
// original entry.
func (s *BlockStore) Insert(ctx context.Context, entry guard.BlockedAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.Address]; !ok {
		s.entries[entry.Address] = entry
	}
	return nil
}

// Remove unlists an address. Removing an unlisted address is a no-op.
func (s *BlockStore) Remove(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, address)
	return nil
}

// List returns all entries ordered by block time.
func (s *BlockStore) List(ctx context.Context) ([]guard.BlockedAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]guard.BlockedAddress, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BlockedAt.Before(out[j].BlockedAt)
	})
	return out, nil
}

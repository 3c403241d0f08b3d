package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	goShield "github.com/MrEthical07/goShield"
)

// UserStore is an in-memory [goShield.UserStore]. Safe for concurrent use.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*goShield.UserRecord
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*goShield.UserRecord)}
}

var zeroHash [32]byte

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a record. Email uniqueness is enforced against live
// records only; a tombstoned account does not hold its address. Account
// codes stay unique across tombstones so old codes are never reissued.
func (s *UserStore) CreateUser(ctx context.Context, record goShield.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(record.Email)
	for _, u := range s.users {
		if u.DeletedAt == nil && normalizeEmail(u.Email) == email {
			return goShield.ErrEmailTaken
		}
	}
	for _, u := range s.users {
		if u.AccountCode != "" && u.AccountCode == record.AccountCode {
			return goShield.ErrAccountCodeTaken
		}
	}

	clone := record
	s.users[record.UserID] = &clone
	return nil
}

// GetUserByEmail returns the non-deleted record matching the case-normalized
// email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (goShield.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := normalizeEmail(email)
	for _, u := range s.users {
		if normalizeEmail(u.Email) == want && u.DeletedAt == nil {
			return *u, nil
		}
	}
	return goShield.UserRecord{}, goShield.ErrUserNotFound
}

// GetUserByID returns the non-deleted record for userID.
func (s *UserStore) GetUserByID(ctx context.Context, userID string) (goShield.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.DeletedAt != nil {
		return goShield.UserRecord{}, goShield.ErrUserNotFound
	}
	return *u, nil
}

// GetUserByIDIncludeDeleted also matches tombstoned records.
func (s *UserStore) GetUserByIDIncludeDeleted(ctx context.Context, userID string) (goShield.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return goShield.UserRecord{}, goShield.ErrUserNotFound
	}
	return *u, nil
}

// UpdatePasswordHash replaces the stored credential hash.
func (s *UserStore) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return s.mutate(userID, func(u *goShield.UserRecord) error {
		u.PasswordHash = newHash
		return nil
	})
}

// UpdateRole replaces the stored role.
func (s *UserStore) UpdateRole(ctx context.Context, userID string, role goShield.Role) error {
	return s.mutate(userID, func(u *goShield.UserRecord) error {
		u.Role = role
		return nil
	})
}

// SetVerificationCode overwrites the pending verification challenge.
func (s *UserStore) SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	return s.mutate(userID, func(u *goShield.UserRecord) error {
		u.VerificationCode = code
		u.VerificationExpiresAt = expiresAt
		return nil
	})
}

// MarkVerified flips the verified flag and clears the pending challenge.
func (s *UserStore) MarkVerified(ctx context.Context, userID string, at time.Time) error {
	return s.mutate(userID, func(u *goShield.UserRecord) error {
		u.Verified = true
		verifiedAt := at
		u.EmailVerifiedAt = &verifiedAt
		u.VerificationCode = ""
		u.VerificationExpiresAt = time.Time{}
		return nil
	})
}

// SetResetSecret overwrites the pending reset challenge.
func (s *UserStore) SetResetSecret(ctx context.Context, userID string, secretHash [32]byte, expiresAt time.Time) error {
	return s.mutate(userID, func(u *goShield.UserRecord) error {
		u.ResetSecretHash = secretHash
		u.ResetExpiresAt = expiresAt
		return nil
	})
}

// GetUserByResetHash returns the non-deleted record whose stored reset hash
// matches.
func (s *UserStore) GetUserByResetHash(ctx context.Context, secretHash [32]byte) (goShield.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if secretHash == zeroHash {
		return goShield.UserRecord{}, goShield.ErrUserNotFound
	}
	for _, u := range s.users {
		if u.ResetSecretHash == secretHash && u.DeletedAt == nil {
			return *u, nil
		}
	}
	return goShield.UserRecord{}, goShield.ErrUserNotFound
}

// ClearResetSecret removes the pending reset challenge.
func (s *UserStore) ClearResetSecret(ctx context.Context, userID string) error {
	return s.mutate(userID, func(u *goShield.UserRecord) error {
		u.ResetSecretHash = zeroHash
		u.ResetExpiresAt = time.Time{}
		return nil
	})
}

// SetRefreshSecret replaces the stored refresh-secret hash.
func (s *UserStore) SetRefreshSecret(ctx context.Context, userID string, secretHash [32]byte) error {
	return s.mutate(userID, func(u *goShield.UserRecord) error {
		u.RefreshSecretHash = secretHash
		return nil
	})
}

// GetUserByRefreshHash returns the non-deleted record whose stored refresh
// hash matches.
func (s *UserStore) GetUserByRefreshHash(ctx context.Context, secretHash [32]byte) (goShield.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if secretHash == zeroHash {
		return goShield.UserRecord{}, goShield.ErrUserNotFound
	}
	for _, u := range s.users {
		if u.RefreshSecretHash == secretHash && u.DeletedAt == nil {
			return *u, nil
		}
	}
	return goShield.UserRecord{}, goShield.ErrUserNotFound
}

// RotateRefreshSecret swaps current for next only when current still matches.
// The whole compare-and-swap runs under the store lock.
func (s *UserStore) RotateRefreshSecret(ctx context.Context, userID string, current, next [32]byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.DeletedAt != nil {
		return false, goShield.ErrUserNotFound
	}
	if u.RefreshSecretHash != current {
		return false, nil
	}
	u.RefreshSecretHash = next
	return true, nil
}

// ClearRefreshSecret removes the stored refresh hash.
func (s *UserStore) ClearRefreshSecret(ctx context.Context, userID string) error {
	return s.mutate(userID, func(u *goShield.UserRecord) error {
		u.RefreshSecretHash = zeroHash
		return nil
	})
}

// AdjustWalletBalance applies delta under the store lock and rejects writes
// that would take the balance negative.
func (s *UserStore) AdjustWalletBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.DeletedAt != nil {
		return decimal.Zero, goShield.ErrUserNotFound
	}

	next := u.WalletBalance.Add(delta)
	if next.IsNegative() {
		return u.WalletBalance, goShield.ErrInsufficientFunds
	}
	u.WalletBalance = next
	return next, nil
}

// SoftDeleteUser stamps the tombstone. Already deleted records keep their
// original timestamp.
func (s *UserStore) SoftDeleteUser(ctx context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return goShield.ErrUserNotFound
	}
	if u.DeletedAt == nil {
		deletedAt := at
		u.DeletedAt = &deletedAt
	}
	return nil
}

// RestoreUser clears the tombstone. The restore fails when a live account
// claimed the email while the record sat tombstoned.
func (s *UserStore) RestoreUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return goShield.ErrUserNotFound
	}
	email := normalizeEmail(u.Email)
	for id, other := range s.users {
		if id != userID && other.DeletedAt == nil && normalizeEmail(other.Email) == email {
			return goShield.ErrEmailTaken
		}
	}
	u.DeletedAt = nil
	return nil
}

func (s *UserStore) mutate(userID string, fn func(*goShield.UserRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.DeletedAt != nil {
		return goShield.ErrUserNotFound
	}
	return fn(u)
}

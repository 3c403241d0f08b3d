package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	goShield "github.com/MrEthical07/goShield"
)

var zeroHash [32]byte

// UserStore is a pgx-backed goShield.UserStore. Account-code uniqueness is
// a table constraint; email uniqueness is a partial index over live rows so
// tombstoned accounts release their address. RotateRefreshSecret and
// AdjustWalletBalance are single-statement atomic.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a UserStore on the given pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `
	user_id, email, phone, password_hash, role, account_code,
	verified, email_verified_at, wallet_balance::text,
	verification_code, verification_expires_at,
	reset_secret_hash, reset_expires_at, refresh_secret_hash,
	identification_status, created_at, deleted_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (goShield.UserRecord, error) {
	var (
		u         goShield.UserRecord
		balance   string
		resetHash []byte
		refresh   []byte
	)
	err := row.Scan(
		&u.UserID, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.AccountCode,
		&u.Verified, &u.EmailVerifiedAt, &balance,
		&u.VerificationCode, &u.VerificationExpiresAt,
		&resetHash, &u.ResetExpiresAt, &refresh,
		&u.IdentificationStatus, &u.CreatedAt, &u.DeletedAt,
	)
	if err != nil {
		return goShield.UserRecord{}, err
	}
	u.WalletBalance, err = decimal.NewFromString(balance)
	if err != nil {
		return goShield.UserRecord{}, err
	}
	copy(u.ResetSecretHash[:], resetHash)
	copy(u.RefreshSecretHash[:], refresh)
	return u, nil
}

func hashParam(h [32]byte) []byte {
	if h == zeroHash {
		return []byte{}
	}
	return h[:]
}

func (s *UserStore) CreateUser(ctx context.Context, record goShield.UserRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO shield_users (
			user_id, email, phone, password_hash, role, account_code,
			verified, wallet_balance, verification_code, verification_expires_at,
			identification_status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11, $12)
	`, record.UserID, record.Email, record.Phone, record.PasswordHash, record.Role,
		record.AccountCode, record.Verified, record.WalletBalance.String(),
		record.VerificationCode, record.VerificationExpiresAt,
		record.IdentificationStatus, record.CreatedAt)
	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case "shield_users_account_code_key":
			return goShield.ErrAccountCodeTaken
		default:
			return goShield.ErrEmailTaken
		}
	}
	return err
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (goShield.UserRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM shield_users
		WHERE email = $1 AND deleted_at IS NULL
	`, email)
	return mapNoRows(scanUser(row))
}

func (s *UserStore) GetUserByID(ctx context.Context, userID string) (goShield.UserRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM shield_users
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID)
	return mapNoRows(scanUser(row))
}

func (s *UserStore) GetUserByIDIncludeDeleted(ctx context.Context, userID string) (goShield.UserRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM shield_users
		WHERE user_id = $1
	`, userID)
	return mapNoRows(scanUser(row))
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return s.updateLive(ctx, `
		UPDATE shield_users SET password_hash = $2
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID, newHash)
}

func (s *UserStore) UpdateRole(ctx context.Context, userID string, role goShield.Role) error {
	return s.updateLive(ctx, `
		UPDATE shield_users SET role = $2
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID, role)
}

func (s *UserStore) SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	return s.updateLive(ctx, `
		UPDATE shield_users SET verification_code = $2, verification_expires_at = $3
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID, code, expiresAt)
}

func (s *UserStore) MarkVerified(ctx context.Context, userID string, at time.Time) error {
	return s.updateLive(ctx, `
		UPDATE shield_users
		SET verified = TRUE, email_verified_at = $2,
		    verification_code = '', verification_expires_at = 'epoch'
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID, at)
}

func (s *UserStore) SetResetSecret(ctx context.Context, userID string, secretHash [32]byte, expiresAt time.Time) error {
	return s.updateLive(ctx, `
		UPDATE shield_users SET reset_secret_hash = $2, reset_expires_at = $3
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID, secretHash[:], expiresAt)
}

func (s *UserStore) GetUserByResetHash(ctx context.Context, secretHash [32]byte) (goShield.UserRecord, error) {
	// A zero hash is the cleared state; matching it would leak every user
	// without a pending reset.
	if secretHash == zeroHash {
		return goShield.UserRecord{}, goShield.ErrUserNotFound
	}
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM shield_users
		WHERE reset_secret_hash = $1 AND deleted_at IS NULL
	`, secretHash[:])
	return mapNoRows(scanUser(row))
}

func (s *UserStore) ClearResetSecret(ctx context.Context, userID string) error {
	return s.updateLive(ctx, `
		UPDATE shield_users SET reset_secret_hash = ''::bytea, reset_expires_at = 'epoch'
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID)
}

func (s *UserStore) SetRefreshSecret(ctx context.Context, userID string, secretHash [32]byte) error {
	return s.updateLive(ctx, `
		UPDATE shield_users SET refresh_secret_hash = $2
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID, secretHash[:])
}

func (s *UserStore) GetUserByRefreshHash(ctx context.Context, secretHash [32]byte) (goShield.UserRecord, error) {
	if secretHash == zeroHash {
		return goShield.UserRecord{}, goShield.ErrUserNotFound
	}
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM shield_users
		WHERE refresh_secret_hash = $1 AND deleted_at IS NULL
	`, secretHash[:])
	return mapNoRows(scanUser(row))
}

func (s *UserStore) RotateRefreshSecret(ctx context.Context, userID string, current, next [32]byte) (bool, error) {
	cmd, err := s.pool.Exec(ctx, `
		UPDATE shield_users SET refresh_secret_hash = $3
		WHERE user_id = $1 AND refresh_secret_hash = $2 AND deleted_at IS NULL
	`, userID, hashParam(current), next[:])
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *UserStore) ClearRefreshSecret(ctx context.Context, userID string) error {
	return s.updateLive(ctx, `
		UPDATE shield_users SET refresh_secret_hash = ''::bytea
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID)
}

func (s *UserStore) AdjustWalletBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE shield_users
		SET wallet_balance = wallet_balance + $2::numeric
		WHERE user_id = $1 AND deleted_at IS NULL
		  AND wallet_balance + $2::numeric >= 0
		RETURNING wallet_balance::text
	`, userID, delta.String())

	var balance string
	if err := row.Scan(&balance); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, err
		}
		// Guarded update matched no row: either the user is gone or the debit
		// would go negative. Disambiguate with a plain lookup.
		if _, lookupErr := s.GetUserByID(ctx, userID); lookupErr != nil {
			return decimal.Zero, lookupErr
		}
		return decimal.Zero, goShield.ErrInsufficientFunds
	}
	return decimal.NewFromString(balance)
}

func (s *UserStore) SoftDeleteUser(ctx context.Context, userID string, at time.Time) error {
	// deleted_at is kept from the first delete so repeated calls cannot move
	// the tombstone timestamp.
	cmd, err := s.pool.Exec(ctx, `
		UPDATE shield_users SET deleted_at = $2
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Already tombstoned is a no-op; only a missing row is an error.
		if _, err := s.GetUserByIDIncludeDeleted(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

func (s *UserStore) RestoreUser(ctx context.Context, userID string) error {
	cmd, err := s.pool.Exec(ctx, `
		UPDATE shield_users SET deleted_at = NULL
		WHERE user_id = $1
	`, userID)
	if _, ok := uniqueViolation(err); ok {
		// A live account claimed the email while this one sat tombstoned.
		return goShield.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return goShield.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) updateLive(ctx context.Context, query string, args ...any) error {
	cmd, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return goShield.ErrUserNotFound
	}
	return nil
}

func mapNoRows(u goShield.UserRecord, err error) (goShield.UserRecord, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return goShield.UserRecord{}, goShield.ErrUserNotFound
	}
	return u, err
}

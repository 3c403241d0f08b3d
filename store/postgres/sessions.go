package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrEthical07/goShield/session"
)

// SessionStore is a pgx-backed implementation of session.Store,
// session.DeviceStore, and session.ActivityStore. Session rows are never
// deleted; invalidation and lazy expiry only flip the active flag.
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a SessionStore on the given pool.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) CreateSession(ctx context.Context, sess *session.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO shield_sessions (
			session_id, user_id, fingerprint, user_agent, address,
			latitude, longitude, city, country, loc_known,
			active, created_at, last_activity, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, sess.SessionID, sess.UserID, sess.Fingerprint, sess.UserAgent, sess.Address,
		sess.Location.Latitude, sess.Location.Longitude, sess.Location.City,
		sess.Location.Country, sess.Location.Known,
		sess.Active, sess.CreatedAt, sess.LastActivity, sess.ExpiresAt)
	return err
}

func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT session_id, user_id, fingerprint, user_agent, address,
		       latitude, longitude, city, country, loc_known,
		       active, created_at, last_activity, expires_at
		FROM shield_sessions
		WHERE session_id = $1
	`, sessionID)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	return sess, err
}

func (s *SessionStore) MarkInactive(ctx context.Context, sessionID string) error {
	cmd, err := s.pool.Exec(ctx, `
		UPDATE shield_sessions SET active = FALSE
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *SessionStore) MarkAllInactiveForUser(ctx context.Context, userID string) (int, error) {
	cmd, err := s.pool.Exec(ctx, `
		UPDATE shield_sessions SET active = FALSE
		WHERE user_id = $1 AND active
	`, userID)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (s *SessionStore) ListSessionsForUser(ctx context.Context, userID string) ([]*session.Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT session_id, user_id, fingerprint, user_agent, address,
		       latitude, longitude, city, country, loc_known,
		       active, created_at, last_activity, expires_at
		FROM shield_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sess)
	}
	return items, rows.Err()
}

func (s *SessionStore) RecentLocations(ctx context.Context, userID string, limit int) ([]session.Location, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT latitude, longitude, city, country
		FROM shield_sessions
		WHERE user_id = $1 AND loc_known
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []session.Location
	for rows.Next() {
		loc := session.Location{Known: true}
		if err := rows.Scan(&loc.Latitude, &loc.Longitude, &loc.City, &loc.Country); err != nil {
			return nil, err
		}
		items = append(items, loc)
	}
	return items, rows.Err()
}

func (s *SessionStore) FindDevice(ctx context.Context, userID, fingerprint string) (*session.Device, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT device_id, user_id, fingerprint, browser, os, device_type,
		       first_seen_at, last_seen_at
		FROM shield_devices
		WHERE user_id = $1 AND fingerprint = $2
	`, userID, fingerprint)

	var dev session.Device
	err := row.Scan(&dev.DeviceID, &dev.UserID, &dev.Fingerprint, &dev.Browser,
		&dev.OS, &dev.DeviceType, &dev.FirstSeenAt, &dev.LastSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dev, nil
}

func (s *SessionStore) SaveDevice(ctx context.Context, dev *session.Device) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO shield_devices (
			device_id, user_id, fingerprint, browser, os, device_type,
			first_seen_at, last_seen_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT shield_devices_user_fp_key DO UPDATE
		SET browser = EXCLUDED.browser,
		    os = EXCLUDED.os,
		    device_type = EXCLUDED.device_type,
		    last_seen_at = EXCLUDED.last_seen_at
	`, dev.DeviceID, dev.UserID, dev.Fingerprint, dev.Browser, dev.OS,
		dev.DeviceType, dev.FirstSeenAt, dev.LastSeenAt)
	return err
}

func (s *SessionStore) ListDevicesForUser(ctx context.Context, userID string) ([]*session.Device, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT device_id, user_id, fingerprint, browser, os, device_type,
		       first_seen_at, last_seen_at
		FROM shield_devices
		WHERE user_id = $1
		ORDER BY last_seen_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*session.Device
	for rows.Next() {
		var dev session.Device
		if err := rows.Scan(&dev.DeviceID, &dev.UserID, &dev.Fingerprint,
			&dev.Browser, &dev.OS, &dev.DeviceType,
			&dev.FirstSeenAt, &dev.LastSeenAt); err != nil {
			return nil, err
		}
		items = append(items, &dev)
	}
	return items, rows.Err()
}

func (s *SessionStore) AppendActivity(ctx context.Context, act *session.Activity) error {
	detail, err := json.Marshal(act.Detail)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO shield_activity (
			activity_id, user_id, session_id, type, status, fingerprint,
			latitude, longitude, city, country, loc_known, detail, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13)
	`, act.ActivityID, act.UserID, act.SessionID, act.Type, act.Status,
		act.Fingerprint, act.Location.Latitude, act.Location.Longitude,
		act.Location.City, act.Location.Country, act.Location.Known,
		detail, act.CreatedAt)
	return err
}

func (s *SessionStore) ListActivityForUser(ctx context.Context, userID string, limit int) ([]*session.Activity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT activity_id, user_id, session_id, type, status, fingerprint,
		       latitude, longitude, city, country, loc_known, detail, created_at
		FROM shield_activity
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*session.Activity
	for rows.Next() {
		var (
			act    session.Activity
			detail []byte
		)
		if err := rows.Scan(&act.ActivityID, &act.UserID, &act.SessionID,
			&act.Type, &act.Status, &act.Fingerprint,
			&act.Location.Latitude, &act.Location.Longitude,
			&act.Location.City, &act.Location.Country, &act.Location.Known,
			&detail, &act.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(detail, &act.Detail); err != nil {
			return nil, err
		}
		items = append(items, &act)
	}
	return items, rows.Err()
}

func scanSession(row rowScanner) (*session.Session, error) {
	var sess session.Session
	err := row.Scan(&sess.SessionID, &sess.UserID, &sess.Fingerprint,
		&sess.UserAgent, &sess.Address,
		&sess.Location.Latitude, &sess.Location.Longitude, &sess.Location.City,
		&sess.Location.Country, &sess.Location.Known,
		&sess.Active, &sess.CreatedAt, &sess.LastActivity, &sess.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

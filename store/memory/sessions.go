package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/MrEthical07/goShield/session"
)

// SessionStore is an in-memory implementation of [session.Store],
// [session.DeviceStore], and [session.ActivityStore]. Safe for concurrent use.
type SessionStore struct {
	mu         sync.Mutex
	sessions   map[string]*session.Session
	devices    map[string]*session.Device
	activities []*session.Activity
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.Session),
		devices:  make(map[string]*session.Device),
	}
}

func deviceKey(userID, fingerprint string) string {
	return userID + "\x00" + fingerprint
}

// CreateSession inserts a session row.
func (s *SessionStore) CreateSession(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *sess
	s.sessions[sess.SessionID] = &clone
	return nil
}

// GetSession returns a session by id.
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, session.ErrNotFound
	}
	clone := *sess
	return &clone, nil
}

// MarkInactive flips Active to false, keeping the row.
func (s *SessionStore) MarkInactive(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return session.ErrNotFound
	}
	sess.Active = false
	return nil
}

// MarkAllInactiveForUser flips every active session of a user.
func (s *SessionStore) MarkAllInactiveForUser(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var flipped int
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.Active {
			sess.Active = false
			flipped++
		}
	}
	return flipped, nil
}

// ListSessionsForUser returns all session rows for a user, newest first.
func (s *SessionStore) ListSessionsForUser(ctx context.Context, userID string) ([]*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*session.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			clone := *sess
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RecentLocations returns up to limit known locations for a user, newest
// first.
func (s *SessionStore) RecentLocations(ctx context.Context, userID string, limit int) ([]session.Location, error) {
	sessions, err := s.ListSessionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []session.Location
	for _, sess := range sessions {
		if !sess.Location.Known {
			continue
		}
		out = append(out, sess.Location)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// FindDevice returns the device for a (user, fingerprint) pair.
func (s *SessionStore) FindDevice(ctx context.Context, userID, fingerprint string) (*session.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev, ok := s.devices[deviceKey(userID, fingerprint)]
	if !ok {
		return nil, session.ErrNotFound
	}
	clone := *dev
	return &clone, nil
}

// SaveDevice inserts or replaces a device row.
func (s *SessionStore) SaveDevice(ctx context.Context, dev *session.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *dev
	s.devices[deviceKey(dev.UserID, dev.Fingerprint)] = &clone
	return nil
}

// ListDevicesForUser returns every device recorded for a user.
func (s *SessionStore) ListDevicesForUser(ctx context.Context, userID string) ([]*session.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*session.Device
	for _, dev := range s.devices {
		if dev.UserID == userID {
			clone := *dev
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FirstSeenAt.Before(out[j].FirstSeenAt)
	})
	return out, nil
}

// AppendActivity appends one trail entry.
func (s *SessionStore) AppendActivity(ctx context.Context, act *session.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *act
	if act.Detail != nil {
		clone.Detail = make(map[string]string, len(act.Detail))
		for k, v := range act.Detail {
			clone.Detail[k] = v
		}
	}
	s.activities = append(s.activities, &clone)
	return nil
}

// ListActivityForUser returns up to limit entries for a user, newest first.
func (s *SessionStore) ListActivityForUser(ctx context.Context, userID string, limit int) ([]*session.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*session.Activity
	for i := len(s.activities) - 1; i >= 0; i-- {
		if s.activities[i].UserID != userID {
			continue
		}
		clone := *s.activities[i]
		out = append(out, &clone)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

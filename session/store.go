package session

import "context"

// Store persists session rows. Implementations must treat sessions as
// durable: MarkInactive flips a flag and never deletes.
type Store interface {
	// CreateSession inserts a new session row.
	CreateSession(ctx context.Context, sess *Session) error
	// GetSession returns a session by id, ErrNotFound when absent.
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	// MarkInactive sets Active=false. Calling it on an already inactive
	// session is a no-op, not an error. Absent sessions return ErrNotFound.
	MarkInactive(ctx context.Context, sessionID string) error
	// MarkAllInactiveForUser flips every active session of a user and returns
	// how many were flipped.
	MarkAllInactiveForUser(ctx context.Context, userID string) (int, error)
	// ListSessionsForUser returns all session rows for a user, newest first.
	ListSessionsForUser(ctx context.Context, userID string) ([]*Session, error)
	// RecentLocations returns up to limit known locations previously recorded
	// for the user, newest first.
	RecentLocations(ctx context.Context, userID string, limit int) ([]Location, error)
}

// DeviceStore persists (user, fingerprint) device rows.
type DeviceStore interface {
	// FindDevice returns the device for a user/fingerprint pair, ErrNotFound
	// when the pair has never been seen.
	FindDevice(ctx context.Context, userID, fingerprint string) (*Device, error)
	// SaveDevice inserts a new device or updates the existing row's
	// attributes and LastSeenAt.
	SaveDevice(ctx context.Context, dev *Device) error
	// ListDevicesForUser returns all devices recorded for a user.
	ListDevicesForUser(ctx context.Context, userID string) ([]*Device, error)
}

// ActivityStore persists the append-only activity trail. Rows are never
// mutated or deleted.
type ActivityStore interface {
	// AppendActivity inserts one trail entry.
	AppendActivity(ctx context.Context, act *Activity) error
	// ListActivityForUser returns up to limit entries for a user, newest
	// first.
	ListActivityForUser(ctx context.Context, userID string, limit int) ([]*Activity, error)
}

// GeoResolver maps a source address to a coarse location. Implementations may
// be slow or unavailable; callers bound the call with a timeout and treat any
// failure as an unknown location.
type GeoResolver interface {
	Resolve(ctx context.Context, address string) (Location, error)
}

package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goShield/internal"
)

// Config controls session lifetime and the anomaly check.
type Config struct {
	// TTL is the fixed session lifetime. ExpiresAt = CreatedAt + TTL exactly.
	TTL time.Duration
	// SuspiciousDistanceKM is the distance beyond which a login location is
	// considered anomalous relative to every prior recorded location.
	SuspiciousDistanceKM float64
	// GeoResolveTimeout bounds each GeoResolver call.
	GeoResolveTimeout time.Duration
	// LocationHistoryLimit caps how many prior locations the anomaly check
	// loads. Zero means the default.
	LocationHistoryLimit int
}

const (
	defaultTTL                  = 24 * time.Hour
	defaultSuspiciousDistanceKM = 1000.0
	defaultGeoResolveTimeout    = 2 * time.Second
	defaultLocationHistory      = 50
)

// Manager coordinates session creation, validation, and the login anomaly
// check across the session, device, and activity stores.
type Manager struct {
	sessions   Store
	devices    DeviceStore
	activities ActivityStore
	geo        GeoResolver
	config     Config
}

// NewManager wires a Manager. geo may be nil, in which case every location is
// unknown and the distance check never fires.
func NewManager(sessions Store, devices DeviceStore, activities ActivityStore, geo GeoResolver, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.SuspiciousDistanceKM <= 0 {
		cfg.SuspiciousDistanceKM = defaultSuspiciousDistanceKM
	}
	if cfg.GeoResolveTimeout <= 0 {
		cfg.GeoResolveTimeout = defaultGeoResolveTimeout
	}
	if cfg.LocationHistoryLimit <= 0 {
		cfg.LocationHistoryLimit = defaultLocationHistory
	}

	return &Manager{
		sessions:   sessions,
		devices:    devices,
		activities: activities,
		geo:        geo,
		config:     cfg,
	}
}

// TTL returns the configured fixed session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}

// Create opens a session for the user. The suspicion score is computed
// against state recorded BEFORE this login, then the device row is upserted
// and the session persisted.
func (m *Manager) Create(ctx context.Context, userID string, meta RequestMeta) (*Session, Suspicion, error) {
	fingerprint := internal.Fingerprint(meta.UserAgent, meta.AcceptLanguage, meta.Address)
	location := m.resolveLocation(ctx, meta.Address)

	suspicion, err := m.assess(ctx, userID, fingerprint, location)
	if err != nil {
		return nil, Suspicion{}, err
	}

	if err := m.touchDevice(ctx, userID, fingerprint, meta.UserAgent); err != nil {
		return nil, Suspicion{}, err
	}

	sid, err := internal.NewSessionID()
	if err != nil {
		return nil, Suspicion{}, err
	}

	now := time.Now().UTC()
	sess := &Session{
		SessionID:    sid.String(),
		UserID:       userID,
		Fingerprint:  fingerprint,
		UserAgent:    meta.UserAgent,
		Address:      meta.Address,
		Location:     location,
		Active:       true,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(m.config.TTL),
	}
	if err := m.sessions.CreateSession(ctx, sess); err != nil {
		return nil, Suspicion{}, err
	}

	return sess, suspicion, nil
}

// Validate returns the session when it is active and unexpired. The first
// validation past the expiry flips the row to inactive and returns
// ErrExpired; later validations return the same error without another write.
func (m *Manager) Validate(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Expired(time.Now()) {
		if sess.Active {
			if err := m.sessions.MarkInactive(ctx, sessionID); err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		return nil, ErrExpired
	}

	if !sess.Active {
		return nil, ErrInactive
	}

	return sess, nil
}

// Invalidate flips one session to inactive. Already inactive sessions are a
// no-op; absent sessions return ErrNotFound.
func (m *Manager) Invalidate(ctx context.Context, sessionID string) error {
	return m.sessions.MarkInactive(ctx, sessionID)
}

// InvalidateAllForUser flips every active session of a user and returns how
// many were flipped.
func (m *Manager) InvalidateAllForUser(ctx context.Context, userID string) (int, error) {
	return m.sessions.MarkAllInactiveForUser(ctx, userID)
}

// ListForUser returns all session rows for a user, including expired and
// invalidated ones.
func (m *Manager) ListForUser(ctx context.Context, userID string) ([]*Session, error) {
	return m.sessions.ListSessionsForUser(ctx, userID)
}

// DevicesForUser returns every device recorded for a user.
func (m *Manager) DevicesForUser(ctx context.Context, userID string) ([]*Device, error) {
	return m.devices.ListDevicesForUser(ctx, userID)
}

// Record appends one activity entry, filling id and timestamp when unset.
func (m *Manager) Record(ctx context.Context, act *Activity) error {
	if act.ActivityID == "" {
		act.ActivityID = uuid.NewString()
	}
	if act.CreatedAt.IsZero() {
		act.CreatedAt = time.Now().UTC()
	}
	return m.activities.AppendActivity(ctx, act)
}

// ActivityForUser returns up to limit trail entries for a user, newest first.
func (m *Manager) ActivityForUser(ctx context.Context, userID string, limit int) ([]*Activity, error) {
	return m.activities.ListActivityForUser(ctx, userID, limit)
}

// Fingerprint exposes the canonical request fingerprint for callers that
// record activity outside a session.
func (m *Manager) Fingerprint(meta RequestMeta) string {
	return internal.Fingerprint(meta.UserAgent, meta.AcceptLanguage, meta.Address)
}

// ResolveLocation resolves the address with the configured timeout. Failures
// degrade to an unknown location.
func (m *Manager) ResolveLocation(ctx context.Context, address string) Location {
	return m.resolveLocation(ctx, address)
}

func (m *Manager) resolveLocation(ctx context.Context, address string) Location {
	if m.geo == nil || address == "" {
		return Location{}
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.GeoResolveTimeout)
	defer cancel()

	loc, err := m.geo.Resolve(ctx, address)
	if err != nil {
		return Location{}
	}
	return loc
}

func (m *Manager) assess(ctx context.Context, userID, fingerprint string, current Location) (Suspicion, error) {
	var suspicion Suspicion

	_, err := m.devices.FindDevice(ctx, userID, fingerprint)
	switch {
	case errors.Is(err, ErrNotFound):
		suspicion.NewDevice = true
	case err != nil:
		return Suspicion{}, err
	}

	if !current.Known {
		return suspicion, nil
	}

	prior, err := m.sessions.RecentLocations(ctx, userID, m.config.LocationHistoryLimit)
	if err != nil {
		return Suspicion{}, err
	}
	if len(prior) == 0 {
		return suspicion, nil
	}

	nearest := DistanceKM(current, prior[0])
	for _, loc := range prior[1:] {
		if d := DistanceKM(current, loc); d < nearest {
			nearest = d
		}
	}
	suspicion.NearestKnownKM = nearest
	suspicion.DistantLocation = nearest > m.config.SuspiciousDistanceKM

	return suspicion, nil
}

func (m *Manager) touchDevice(ctx context.Context, userID, fingerprint, userAgent string) error {
	now := time.Now().UTC()

	dev, err := m.devices.FindDevice(ctx, userID, fingerprint)
	if err == nil {
		dev.LastSeenAt = now
		return m.devices.SaveDevice(ctx, dev)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	browser, os, deviceType := ParseUserAgent(userAgent)
	return m.devices.SaveDevice(ctx, &Device{
		DeviceID:    uuid.NewString(),
		UserID:      userID,
		Fingerprint: fingerprint,
		Browser:     browser,
		OS:          os,
		DeviceType:  deviceType,
		FirstSeenAt: now,
		LastSeenAt:  now,
	})
}

package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goShield/session"
	"github.com/MrEthical07/goShield/store/memory"
)

var (
	accra  = session.Location{Latitude: 5.6, Longitude: -0.2, City: "Accra", Country: "GH", Known: true}
	tema   = session.Location{Latitude: 5.7, Longitude: -0.1, City: "Tema", Country: "GH", Known: true}
	london = session.Location{Latitude: 51.5, Longitude: -0.1, City: "London", Country: "GB", Known: true}
)

type mapResolver map[string]session.Location

func (r mapResolver) Resolve(_ context.Context, address string) (session.Location, error) {
	loc, ok := r[address]
	if !ok {
		return session.Location{}, errors.New("unknown address")
	}
	return loc, nil
}

func newManager(t *testing.T, geo session.GeoResolver) (*session.Manager, *memory.SessionStore) {
	t.Helper()
	store := memory.NewSessionStore()
	mgr := session.NewManager(store, store, store, geo, session.Config{
		TTL:                  24 * time.Hour,
		SuspiciousDistanceKM: 1000,
	})
	return mgr, store
}

func TestCreateFixedExpiry(t *testing.T) {
	mgr, store := newManager(t, nil)

	const agent = "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0"
	sess, _, err := mgr.Create(context.Background(), "user-1", session.RequestMeta{
		Address:   "203.0.113.7",
		UserAgent: agent,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !sess.Active {
		t.Fatal("new session not active")
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != 24*time.Hour {
		t.Fatalf("ExpiresAt - CreatedAt = %v, want exactly 24h", got)
	}
	if !sess.LastActivity.Equal(sess.CreatedAt) {
		t.Fatalf("LastActivity = %v, want CreatedAt %v", sess.LastActivity, sess.CreatedAt)
	}

	// The raw user agent survives the round trip through the store.
	stored, err := store.GetSession(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if stored.UserAgent != agent {
		t.Fatalf("stored UserAgent = %q, want %q", stored.UserAgent, agent)
	}
	if !stored.LastActivity.Equal(sess.CreatedAt) {
		t.Fatalf("stored LastActivity = %v, want %v", stored.LastActivity, sess.CreatedAt)
	}
}

func TestValidateActiveSession(t *testing.T) {
	mgr, _ := newManager(t, nil)

	created, _, err := mgr.Create(context.Background(), "user-1", session.RequestMeta{Address: "203.0.113.7"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := mgr.Validate(context.Background(), created.SessionID)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.SessionID != created.SessionID || got.UserID != "user-1" {
		t.Fatalf("wrong session: %+v", got)
	}
}

func TestValidateUnknownSession(t *testing.T) {
	mgr, _ := newManager(t, nil)

	if _, err := mgr.Validate(context.Background(), "no-such-session"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestValidateLazyExpiryIdempotent(t *testing.T) {
	mgr, store := newManager(t, nil)
	ctx := context.Background()

	now := time.Now().UTC()
	expired := &session.Session{
		SessionID: "sess-expired",
		UserID:    "user-1",
		Active:    true,
		CreatedAt: now.Add(-25 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	if err := store.CreateSession(ctx, expired); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	// First validation past expiry flips the row inactive.
	if _, err := mgr.Validate(ctx, "sess-expired"); !errors.Is(err, session.ErrExpired) {
		t.Fatalf("first Validate: got %v, want ErrExpired", err)
	}
	stored, err := store.GetSession(ctx, "sess-expired")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if stored.Active {
		t.Fatal("expired session still active after validation")
	}

	// Revalidating afterward returns the same error without another flip.
	if _, err := mgr.Validate(ctx, "sess-expired"); !errors.Is(err, session.ErrExpired) {
		t.Fatalf("second Validate: got %v, want ErrExpired", err)
	}
}

func TestInvalidateFlipsNotDeletes(t *testing.T) {
	mgr, store := newManager(t, nil)
	ctx := context.Background()

	created, _, err := mgr.Create(ctx, "user-1", session.RequestMeta{Address: "203.0.113.7"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := mgr.Invalidate(ctx, created.SessionID); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := mgr.Validate(ctx, created.SessionID); !errors.Is(err, session.ErrInactive) {
		t.Fatalf("Validate after invalidate: got %v, want ErrInactive", err)
	}

	// The row survives for the audit trail.
	if _, err := store.GetSession(ctx, created.SessionID); err != nil {
		t.Fatalf("invalidated session was deleted: %v", err)
	}
}

func TestInvalidateAllForUser(t *testing.T) {
	mgr, _ := newManager(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := mgr.Create(ctx, "user-1", session.RequestMeta{Address: "203.0.113.7"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, _, err := mgr.Create(ctx, "user-2", session.RequestMeta{Address: "203.0.113.8"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	flipped, err := mgr.InvalidateAllForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("InvalidateAllForUser: %v", err)
	}
	if flipped != 3 {
		t.Fatalf("flipped = %d, want 3", flipped)
	}

	others, err := mgr.ListForUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(others) != 1 || !others[0].Active {
		t.Fatal("unrelated user's session was touched")
	}
}

func TestSuspicionFirstLoginNeverLocationSuspicious(t *testing.T) {
	mgr, _ := newManager(t, mapResolver{"198.51.100.1": accra})

	_, suspicion, err := mgr.Create(context.Background(), "user-1", session.RequestMeta{
		Address:   "198.51.100.1",
		UserAgent: "Mozilla/5.0 Chrome/120.0",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !suspicion.NewDevice {
		t.Fatal("first login should be a new device")
	}
	if suspicion.DistantLocation {
		t.Fatal("empty location history must never be location-suspicious")
	}
}

func TestSuspicionNearbyLoginNotSuspicious(t *testing.T) {
	geo := mapResolver{"198.51.100.1": accra, "198.51.100.2": tema}
	mgr, _ := newManager(t, geo)
	ctx := context.Background()

	meta := session.RequestMeta{Address: "198.51.100.1", UserAgent: "Mozilla/5.0 Chrome/120.0"}
	if _, _, err := mgr.Create(ctx, "user-1", meta); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Same device attributes, a town over. Roughly 15 km.
	_, suspicion, err := mgr.Create(ctx, "user-1", session.RequestMeta{
		Address:        "198.51.100.2",
		UserAgent:      "Mozilla/5.0 Chrome/120.0",
		AcceptLanguage: "",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if suspicion.DistantLocation {
		t.Fatalf("nearby login flagged, nearest = %.0f km", suspicion.NearestKnownKM)
	}
}

func TestSuspicionDistantLoginSuspicious(t *testing.T) {
	geo := mapResolver{"198.51.100.1": accra, "198.51.100.9": london}
	mgr, _ := newManager(t, geo)
	ctx := context.Background()

	if _, _, err := mgr.Create(ctx, "user-1", session.RequestMeta{
		Address:   "198.51.100.1",
		UserAgent: "Mozilla/5.0 Chrome/120.0",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, suspicion, err := mgr.Create(ctx, "user-1", session.RequestMeta{
		Address:   "198.51.100.9",
		UserAgent: "Mozilla/5.0 Chrome/120.0",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !suspicion.DistantLocation {
		t.Fatalf("Accra to London not flagged, nearest = %.0f km", suspicion.NearestKnownKM)
	}
	if !suspicion.Any() {
		t.Fatal("Any() false with a fired signal")
	}
}

func TestSuspicionKnownDeviceNotNew(t *testing.T) {
	mgr, _ := newManager(t, nil)
	ctx := context.Background()

	meta := session.RequestMeta{Address: "203.0.113.7", UserAgent: "Mozilla/5.0 Chrome/120.0"}
	if _, _, err := mgr.Create(ctx, "user-1", meta); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, suspicion, err := mgr.Create(ctx, "user-1", meta)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if suspicion.NewDevice {
		t.Fatal("repeat fingerprint flagged as new device")
	}
	if suspicion.Any() {
		t.Fatal("repeat login from same place flagged suspicious")
	}
}

func TestGeoFailureDegradesToUnknown(t *testing.T) {
	// Resolver knows no addresses; every resolution fails.
	mgr, _ := newManager(t, mapResolver{})

	sess, suspicion, err := mgr.Create(context.Background(), "user-1", session.RequestMeta{Address: "203.0.113.7"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.Location.Known {
		t.Fatal("failed resolution produced a known location")
	}
	if suspicion.DistantLocation {
		t.Fatal("unknown location must never be location-suspicious")
	}
}

func TestRecordAndListActivity(t *testing.T) {
	mgr, _ := newManager(t, nil)
	ctx := context.Background()

	for _, typ := range []session.ActivityType{
		session.ActivityRegistration,
		session.ActivityLogin,
		session.ActivityLogout,
	} {
		if err := mgr.Record(ctx, &session.Activity{
			UserID: "user-1",
			Type:   typ,
			Status: session.StatusSuccess,
		}); err != nil {
			t.Fatalf("Record(%s): %v", typ, err)
		}
	}

	entries, err := mgr.ActivityForUser(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ActivityForUser: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// Newest first.
	if entries[0].Type != session.ActivityLogout {
		t.Fatalf("first entry = %s, want LOGOUT", entries[0].Type)
	}
	if entries[0].ActivityID == "" || entries[0].CreatedAt.IsZero() {
		t.Fatal("Record did not fill id/timestamp")
	}
}

func TestDistanceKM(t *testing.T) {
	cases := []struct {
		name     string
		a, b     session.Location
		min, max float64
	}{
		{"same point", accra, accra, 0, 0.001},
		{"accra to tema", accra, tema, 10, 20},
		{"accra to london", accra, london, 4900, 5300},
	}

	for _, tc := range cases {
		got := session.DistanceKM(tc.a, tc.b)
		if got < tc.min || got > tc.max {
			t.Errorf("%s: %.1f km, want within [%.0f, %.0f]", tc.name, got, tc.min, tc.max)
		}
	}
}

func TestParseUserAgent(t *testing.T) {
	cases := []struct {
		ua         string
		browser    string
		os         string
		deviceType string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64) Chrome/120.0 Safari/537.36", "chrome", "windows", session.DeviceDesktop},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0) Safari/604.1", "safari", "ios", session.DeviceMobile},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8) Chrome/120.0 Mobile", "chrome", "android", session.DeviceMobile},
		{"Mozilla/5.0 (iPad; CPU OS 17_0) Safari/604.1", "safari", "ios", session.DeviceTablet},
		{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Firefox/121.0", "firefox", "linux", session.DeviceDesktop},
		{"curl/8.4.0", "bot", "unknown", session.DeviceBot},
		{"", "unknown", "unknown", session.DeviceUnknown},
	}

	for _, tc := range cases {
		browser, os, deviceType := session.ParseUserAgent(tc.ua)
		if browser != tc.browser || os != tc.os || deviceType != tc.deviceType {
			t.Errorf("ParseUserAgent(%q) = (%s, %s, %s), want (%s, %s, %s)",
				tc.ua, browser, os, deviceType, tc.browser, tc.os, tc.deviceType)
		}
	}
}

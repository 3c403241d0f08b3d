package goShield_test

import (
	"context"
	"errors"
	"testing"

	goShield "github.com/MrEthical07/goShield"
	"github.com/MrEthical07/goShield/notify"
	"github.com/MrEthical07/goShield/session"
)

type mapResolver map[string]session.Location

func (r mapResolver) Resolve(_ context.Context, address string) (session.Location, error) {
	loc, ok := r[address]
	if !ok {
		return session.Location{}, errors.New("unknown address")
	}
	return loc, nil
}

func TestLoginHappyPath(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := env.registerVerified(t, "ama@example.com")

	res, err := env.engine.Login(reqCtx(testAddress), "ama@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.UserID != reg.UserID {
		t.Fatalf("user id %q, want %q", res.UserID, reg.UserID)
	}
	if res.Suspicious {
		t.Fatal("same address and device must not be suspicious")
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatal("login did not issue a token pair")
	}

	auth, err := env.engine.ValidateAccess(context.Background(), res.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if auth.UserID != reg.UserID || auth.SessionID != res.Session.SessionID {
		t.Fatal("access claims do not match the login")
	}
	if auth.Role != goShield.RoleUser {
		t.Fatalf("role %q, want user", auth.Role)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerVerified(t, "kojo@example.com")

	if _, err := env.engine.Login(reqCtx(testAddress), "nobody@example.com", testPassword); !errors.Is(err, goShield.ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := env.engine.Login(reqCtx(testAddress), "kojo@example.com", "wrong password"); !errors.Is(err, goShield.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if got := env.counter(t, goShield.MetricLoginFailure); got != 2 {
		t.Fatalf("login failure counter = %d, want 2", got)
	}
}

func TestLoginUnverifiedAccount(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "esi@example.com")

	if _, err := env.engine.Login(reqCtx(testAddress), "esi@example.com", testPassword); !errors.Is(err, goShield.ErrAccountUnverified) {
		t.Fatalf("got %v, want ErrAccountUnverified", err)
	}
}

func TestFailureThresholdBlocksAddress(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerVerified(t, "yaa@example.com")

	for i := 0; i < 5; i++ {
		if _, err := env.engine.Login(reqCtx("198.51.100.9"), "yaa@example.com", "wrong password"); !errors.Is(err, goShield.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: got %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	blocked, err := env.engine.IsAddressBlocked(context.Background(), "198.51.100.9")
	if err != nil {
		t.Fatalf("IsAddressBlocked: %v", err)
	}
	if !blocked {
		t.Fatal("address not blocked after crossing the threshold")
	}

	// The gate runs before any credential work, so even the right password is
	// rejected, and so is registration from the same address.
	if _, err := env.engine.Login(reqCtx("198.51.100.9"), "yaa@example.com", testPassword); !errors.Is(err, goShield.ErrAddressBlocked) {
		t.Fatalf("login from blocked address: got %v, want ErrAddressBlocked", err)
	}
	_, err = env.engine.Register(reqCtx("198.51.100.9"), goShield.RegisterRequest{
		Email:    "fresh@example.com",
		Password: testPassword,
	})
	if !errors.Is(err, goShield.ErrAddressBlocked) {
		t.Fatalf("register from blocked address: got %v, want ErrAddressBlocked", err)
	}

	// A different address is unaffected.
	if _, err := env.engine.Login(reqCtx(testAddress), "yaa@example.com", testPassword); err != nil {
		t.Fatalf("login from clean address: %v", err)
	}

	if got := env.counter(t, goShield.MetricAddressBlocked); got != 1 {
		t.Fatalf("address blocked counter = %d, want exactly 1", got)
	}
}

func TestUnblockRestoresAddress(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerVerified(t, "afia@example.com")

	for i := 0; i < 5; i++ {
		env.engine.Login(reqCtx("198.51.100.20"), "afia@example.com", "wrong password")
	}

	entries, err := env.engine.BlockedAddresses(context.Background())
	if err != nil {
		t.Fatalf("BlockedAddresses: %v", err)
	}
	if len(entries) != 1 || entries[0].Address != "198.51.100.20" {
		t.Fatalf("blocked entries = %+v, want one entry for 198.51.100.20", entries)
	}

	if err := env.engine.UnblockAddress(context.Background(), "198.51.100.20"); err != nil {
		t.Fatalf("UnblockAddress: %v", err)
	}
	if _, err := env.engine.Login(reqCtx("198.51.100.20"), "afia@example.com", testPassword); err != nil {
		t.Fatalf("login after unblock: %v", err)
	}
}

func TestSuccessResetsFailureWindow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerVerified(t, "kwesi@example.com")

	for i := 0; i < 4; i++ {
		env.engine.Login(reqCtx(testAddress), "kwesi@example.com", "wrong password")
	}
	if _, err := env.engine.Login(reqCtx(testAddress), "kwesi@example.com", testPassword); err != nil {
		t.Fatalf("login before threshold: %v", err)
	}

	// The success reset the counter, so four more failures stay under the
	// threshold.
	for i := 0; i < 4; i++ {
		env.engine.Login(reqCtx(testAddress), "kwesi@example.com", "wrong password")
	}
	blocked, err := env.engine.IsAddressBlocked(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("IsAddressBlocked: %v", err)
	}
	if blocked {
		t.Fatal("address blocked although the counter was reset by a success")
	}
}

func TestSuspiciousLoginDistantLocation(t *testing.T) {
	geo := mapResolver{
		"203.0.113.7":  {Latitude: 5.6, Longitude: -0.2, City: "Accra", Country: "GH", Known: true},
		"198.51.100.3": {Latitude: 51.5, Longitude: -0.1, City: "London", Country: "GB", Known: true},
	}

	env := newGeoEnv(t, nil, geo)
	env.registerVerified(t, "ama@example.com")

	if _, err := env.engine.Login(reqCtx("203.0.113.7"), "ama@example.com", testPassword); err != nil {
		t.Fatalf("first login: %v", err)
	}

	res, err := env.engine.Login(reqCtx("198.51.100.3"), "ama@example.com", testPassword)
	if err != nil {
		t.Fatalf("distant login: %v", err)
	}
	if !res.Suspicious || !res.Suspicion.DistantLocation {
		t.Fatalf("suspicion = %+v, want DistantLocation", res.Suspicion)
	}

	n := env.nextMail(t)
	if n.Template != notify.TemplateSuspiciousLogin {
		t.Fatalf("notification %q, want suspicious login", n.Template)
	}
	if got := env.counter(t, goShield.MetricLoginSuspicious); got != 1 {
		t.Fatalf("suspicious counter = %d, want 1", got)
	}
}

func TestSuspiciousLoginNewDevice(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerVerified(t, "abena@example.com")

	ctx := goShield.WithClientIP(context.Background(), testAddress)
	ctx = goShield.WithUserAgent(ctx, "Mozilla/5.0 (Linux; Android 14) Firefox/121.0")
	ctx = goShield.WithAcceptLanguage(ctx, "en-GB")

	res, err := env.engine.Login(ctx, "abena@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !res.Suspicious || !res.Suspicion.NewDevice {
		t.Fatalf("suspicion = %+v, want NewDevice", res.Suspicion)
	}
	env.nextMail(t)
}

func TestActivityTrailRecordsLogins(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := env.registerVerified(t, "adjoa@example.com")

	env.engine.Login(reqCtx(testAddress), "adjoa@example.com", "wrong password")
	if _, err := env.engine.Login(reqCtx(testAddress), "adjoa@example.com", testPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}

	trail, err := env.engine.ActivityHistory(context.Background(), reg.UserID, 50)
	if err != nil {
		t.Fatalf("ActivityHistory: %v", err)
	}

	var seen []session.ActivityType
	for _, act := range trail {
		seen = append(seen, act.Type)
	}
	for _, want := range []session.ActivityType{session.ActivityLogin, session.ActivityLoginFailed, session.ActivityRegistration} {
		if !containsActivity(seen, want) {
			t.Fatalf("trail %v missing %q", seen, want)
		}
	}
}

func containsActivity(types []session.ActivityType, want session.ActivityType) bool {
	for _, typ := range types {
		if typ == want {
			return true
		}
	}
	return false
}

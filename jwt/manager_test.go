package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"
)

func hs256Config() Config {
	return Config{
		AccessTTL:     15 * time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
		Issuer:        "goshield-test",
	}
}

func TestCreateParseRoundTrip(t *testing.T) {
	m, err := NewManager(hs256Config())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := m.CreateAccess("user-1", "sess-1", "admin")
	if err != nil {
		t.Fatalf("CreateAccess: %v", err)
	}

	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.UID != "user-1" || claims.SID != "sess-1" || claims.Role != "admin" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("missing time claims")
	}
	gotTTL := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if gotTTL != 15*time.Minute {
		t.Fatalf("TTL = %v, want 15m", gotTTL)
	}
}

func TestParseRejectsTampering(t *testing.T) {
	m, err := NewManager(hs256Config())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := m.CreateAccess("user-1", "sess-1", "user")
	if err != nil {
		t.Fatalf("CreateAccess: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := m.ParseAccess(tampered); err == nil {
		t.Fatal("tampered signature accepted")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuing, err := NewManager(hs256Config())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	otherCfg := hs256Config()
	otherCfg.PrivateKey = []byte("ffffffffffffffffffffffffffffffff")
	other, err := NewManager(otherCfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := issuing.CreateAccess("user-1", "sess-1", "user")
	if err != nil {
		t.Fatalf("CreateAccess: %v", err)
	}
	if _, err := other.ParseAccess(token); err == nil {
		t.Fatal("token verified under a different secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	cfg := hs256Config()
	cfg.AccessTTL = time.Nanosecond
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := m.CreateAccess("user-1", "sess-1", "user")
	if err != nil {
		t.Fatalf("CreateAccess: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := m.ParseAccess(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestEd25519RoundTripAndKeyRotation(t *testing.T) {
	pubA, privA, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pubB, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    privA,
		KeyID:         "a",
		VerifyKeys: map[string][]byte{
			"a": pubA,
			"b": pubB,
		},
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := m.CreateAccess("user-2", "sess-2", "user")
	if err != nil {
		t.Fatalf("CreateAccess: %v", err)
	}

	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.UID != "user-2" {
		t.Fatalf("UID = %q", claims.UID)
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero TTL", Config{SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"no secret", Config{AccessTTL: time.Minute, SigningMethod: MethodHS256}},
		{"bad method", Config{AccessTTL: time.Minute, SigningMethod: "rs256", PrivateKey: []byte("k")}},
		{"excess leeway", Config{AccessTTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: []byte("k"), Leeway: time.Hour}},
		{"ed25519 no keys", Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519}},
	}

	for _, tc := range cases {
		if _, err := NewManager(tc.cfg); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
}

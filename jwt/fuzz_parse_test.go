package jwt

import (
	"testing"
	"time"
)

// FuzzParseAccess throws arbitrary strings at the parser. Nothing here may
// panic, and nothing unsigned may validate.
func FuzzParseAccess(f *testing.F) {
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		f.Fatalf("NewManager: %v", err)
	}

	valid, err := m.CreateAccess("user-f", "sess-f", "user")
	if err != nil {
		f.Fatalf("CreateAccess: %v", err)
	}

	f.Add(valid)
	f.Add("")
	f.Add("a.b.c")
	f.Add("eyJhbGciOiJub25lIn0.eyJ1aWQiOiJ4In0.")
	f.Add(valid + "x")

	f.Fuzz(func(t *testing.T, tokenStr string) {
		claims, err := m.ParseAccess(tokenStr)
		if err == nil && claims == nil {
			t.Fatal("nil claims with nil error")
		}
		if err == nil && tokenStr != valid && claims.UID == "user-f" && claims.SID == "sess-f" {
			// Accepting a mutated token with the original identity would mean
			// signature checking is broken.
			t.Fatalf("forged token accepted: %q", tokenStr)
		}
	})
}

package goShield_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	goShield "github.com/MrEthical07/goShield"
)

func TestRefreshRotatesTokenPair(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerVerified(t, "ama@example.com")

	login, err := env.engine.Login(reqCtx(testAddress), "ama@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	ctx := context.Background()

	pair, err := env.engine.Refresh(ctx, login.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair.RefreshToken == login.Tokens.RefreshToken {
		t.Fatal("refresh token not rotated")
	}

	auth, err := env.engine.ValidateAccess(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess on rotated pair: %v", err)
	}
	if auth.SessionID != login.Session.SessionID {
		t.Fatal("rotation must keep the original session")
	}

	// The superseded token is now reuse.
	if _, err := env.engine.Refresh(ctx, login.Tokens.RefreshToken); !errors.Is(err, goShield.ErrRefreshInvalid) {
		t.Fatalf("superseded token: got %v, want ErrRefreshInvalid", err)
	}
	// The rotated token still works.
	if _, err := env.engine.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("rotated token: %v", err)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, token := range []string{"", "not-a-token", "QUFBQUFBQUFBQUFBQUFBQQ"} {
		if _, err := env.engine.Refresh(context.Background(), token); !errors.Is(err, goShield.ErrRefreshInvalid) {
			t.Fatalf("Refresh(%q): got %v, want ErrRefreshInvalid", token, err)
		}
	}
}

func TestRefreshConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerVerified(t, "kofi@example.com")

	login, err := env.engine.Login(reqCtx(testAddress), "kofi@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	const racers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.engine.Refresh(context.Background(), login.Tokens.RefreshToken); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("%d racers succeeded, want exactly 1", wins)
	}
}

func TestRefreshRequiresActiveSession(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerVerified(t, "esi@example.com")

	login, err := env.engine.Login(reqCtx(testAddress), "esi@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	ctx := context.Background()

	if err := env.engine.InvalidateSession(ctx, login.Session.SessionID); err != nil {
		t.Fatalf("InvalidateSession: %v", err)
	}
	if _, err := env.engine.Refresh(ctx, login.Tokens.RefreshToken); !errors.Is(err, goShield.ErrRefreshInvalid) {
		t.Fatalf("refresh on dead session: got %v, want ErrRefreshInvalid", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerVerified(t, "yaa@example.com")

	login, err := env.engine.Login(reqCtx(testAddress), "yaa@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	ctx := context.Background()

	if err := env.engine.Logout(ctx, login.Tokens.AccessToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := env.engine.Logout(ctx, login.Tokens.AccessToken); err != nil {
		t.Fatalf("second Logout: %v", err)
	}

	// Access validation is purely cryptographic and still passes; the session
	// check is what observes the logout.
	if _, err := env.engine.ValidateAccess(ctx, login.Tokens.AccessToken); err != nil {
		t.Fatalf("ValidateAccess after logout: %v", err)
	}
	if _, err := env.engine.ValidateSession(ctx, login.Session.SessionID); !errors.Is(err, goShield.ErrSessionNotFound) {
		t.Fatalf("ValidateSession after logout: got %v, want ErrSessionNotFound", err)
	}

	if _, err := env.engine.Refresh(ctx, login.Tokens.RefreshToken); !errors.Is(err, goShield.ErrRefreshInvalid) {
		t.Fatalf("refresh after logout: got %v, want ErrRefreshInvalid", err)
	}

	if err := env.engine.Logout(ctx, "not-a-jwt"); !errors.Is(err, goShield.ErrTokenInvalid) {
		t.Fatalf("Logout with garbage: got %v, want ErrTokenInvalid", err)
	}
}

func TestLogoutAllEndsEverySession(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := env.registerVerified(t, "afia@example.com")

	first, err := env.engine.Login(reqCtx(testAddress), "afia@example.com", testPassword)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := env.engine.Login(reqCtx(testAddress), "afia@example.com", testPassword)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	ctx := context.Background()

	if err := env.engine.LogoutAll(ctx, reg.UserID); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}

	for _, sessionID := range []string{reg.Session.SessionID, first.Session.SessionID, second.Session.SessionID} {
		if _, err := env.engine.ValidateSession(ctx, sessionID); !errors.Is(err, goShield.ErrSessionNotFound) {
			t.Fatalf("session %s after LogoutAll: got %v, want ErrSessionNotFound", sessionID, err)
		}
	}
	if _, err := env.engine.Refresh(ctx, second.Tokens.RefreshToken); !errors.Is(err, goShield.ErrRefreshInvalid) {
		t.Fatalf("refresh after LogoutAll: got %v, want ErrRefreshInvalid", err)
	}

	// The sessions endpoint still lists the rows; they are flipped, never
	// deleted.
	sessions, err := env.engine.Sessions(ctx, reg.UserID)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("%d session rows, want 3", len(sessions))
	}
	for _, s := range sessions {
		if s.Active {
			t.Fatalf("session %s still active after LogoutAll", s.SessionID)
		}
	}
}

func TestValidateAccessRejectsForgedToken(t *testing.T) {
	env := newTestEnv(t, nil)

	if _, err := env.engine.ValidateAccess(context.Background(), "eyJhbGciOiJIUzI1NiJ9.forged.sig"); !errors.Is(err, goShield.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goShield "github.com/MrEthical07/goShield"
	"github.com/MrEthical07/goShield/middleware"
	"github.com/MrEthical07/goShield/store/memory"
)

type fixture struct {
	engine *goShield.Engine
	access string
	result *goShield.LoginResult
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := goShield.DevelopmentConfig()
	cfg.JWT.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.Audit.Enabled = false

	users := memory.NewUserStore()
	store := memory.NewSessionStore()
	engine, err := goShield.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserStore(users).
		WithBlockStore(memory.NewBlockStore()).
		WithSessionStores(store, store, store).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	ctx := goShield.WithClientIP(context.Background(), "203.0.113.7")
	reg, err := engine.Register(ctx, goShield.RegisterRequest{
		Email:    "ama@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	user, err := users.GetUserByID(ctx, reg.UserID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if err := engine.VerifyEmail(ctx, "ama@example.com", user.VerificationCode); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	login, err := engine.Login(ctx, "ama@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	return &fixture{engine: engine, access: login.Tokens.AccessToken, result: login}
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := middleware.AuthResultFromContext(r.Context())
		if !ok {
			t.Error("auth result missing from request context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(res.UserID))
	})
}

func TestGuardAcceptsBearerToken(t *testing.T) {
	fx := newFixture(t)
	handler := middleware.Guard(fx.engine)(echoUser(t))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+fx.access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != fx.result.UserID {
		t.Fatalf("body %q, want user id %q", got, fx.result.UserID)
	}
}

func TestGuardRejectsMissingOrBadToken(t *testing.T) {
	fx := newFixture(t)
	handler := middleware.Guard(fx.engine)(echoUser(t))

	cases := map[string]string{
		"no header":       "",
		"wrong scheme":    "Basic abc",
		"empty bearer":    "Bearer ",
		"malformed token": "Bearer not-a-jwt",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d, want 401", name, rec.Code)
		}
	}
}

func TestGuardPassesAfterLogoutUntilExpiry(t *testing.T) {
	fx := newFixture(t)

	if err := fx.engine.Logout(context.Background(), fx.access); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+fx.access)

	// The stateless guard still accepts the token.
	rec := httptest.NewRecorder()
	middleware.Guard(fx.engine)(echoUser(t)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stateless guard after logout: status %d, want 200", rec.Code)
	}

	// The session-checking guard observes the logout immediately.
	rec = httptest.NewRecorder()
	middleware.RequireActiveSession(fx.engine)(echoUser(t)).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("session guard after logout: status %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	fx := newFixture(t)
	handler := middleware.RequireRole(fx.engine, goShield.RoleAdmin)(echoUser(t))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+fx.access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user token on admin route: status %d, want 403", rec.Code)
	}

	userHandler := middleware.RequireRole(fx.engine, goShield.RoleUser)(echoUser(t))
	rec = httptest.NewRecorder()
	userHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("user token on user route: status %d, want 200", rec.Code)
	}
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	goShield "github.com/MrEthical07/goShield"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the validated auth result injected by a guard.
func AuthResultFromContext(ctx context.Context) (*goShield.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*goShield.AuthResult)
	return res, ok
}

// Guard verifies the bearer access token on each request. Verification is
// purely cryptographic; a revoked session passes until the token expires. Use
// [RequireActiveSession] where that window is unacceptable.
func Guard(engine *goShield.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := authenticate(engine, w, r)
			if !ok {
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActiveSession verifies the bearer token and then checks that the
// session it names is still active in the session store.
func RequireActiveSession(engine *goShield.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := authenticate(engine, w, r)
			if !ok {
				return
			}

			if _, err := engine.ValidateSession(r.Context(), res.SessionID); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(engine *goShield.Engine, w http.ResponseWriter, r *http.Request) (*goShield.AuthResult, bool) {
	if engine == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	res, err := engine.ValidateAccess(r.Context(), token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return res, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

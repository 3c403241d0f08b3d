package middleware

import (
	"context"
	"net/http"

	goShield "github.com/MrEthical07/goShield"
)

// RequireRole verifies the bearer token and rejects with 403 when the token's
// role does not match. Role comes from the signed claims, so a role change
// takes effect only after the current access token expires.
func RequireRole(engine *goShield.Engine, role goShield.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := authenticate(engine, w, r)
			if !ok {
				return
			}

			if res.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

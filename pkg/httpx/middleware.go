package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/metagate-hq/platform/pkg/jwtx"
	"github.com/metagate-hq/platform/pkg/slogx"
)

type Middleware = func(http.Handler) http.Handler

// Chain wraps h in the given middlewares, first listed runs outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type ctxKey string

const ctxKeyAccountID ctxKey = "account_id"

// AccountID returns the authenticated account id from the request context,
// or "" when the request was not authenticated.
func AccountID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyAccountID).(string); ok {
		return id
	}
	return ""
}

// AuthnMiddleware verifies the bearer access token and injects the subject
// account id into the request context.
func AuthnMiddleware(signer *jwtx.Signer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := signer.Verify(strings.TrimSpace(strings.TrimPrefix(authz, "Bearer")))
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}
			if err := claims.RequireType(jwtx.TokenTypeAccess); err != nil {
				writeBearerError(w, "not an access token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAccountID, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleResolver looks up the role name for an authenticated account.
type RoleResolver func(ctx context.Context, accountID string) (string, error)

// RequireRole allows the request through only when the authenticated account
// holds one of the listed roles. Must run after AuthnMiddleware.
func RequireRole(resolve RoleResolver, roles ...string) Middleware {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := resolve(r.Context(), AccountID(r.Context()))
			if err != nil {
				writeBearerError(w, "unknown principal")
				return
			}
			if _, ok := allowed[role]; !ok {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("insufficient_role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750-style error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}

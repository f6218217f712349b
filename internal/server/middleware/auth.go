package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/folioapp/folio/internal/service"
)

type contextKeyAuth string

const (
	// AuthPrincipalKey is the context key for the authenticated admin.
	AuthPrincipalKey contextKeyAuth = "auth_principal"
)

// TokenVerifier checks a session token and returns the admin it was issued to.
type TokenVerifier interface {
	VerifyToken(token string) (*service.Principal, error)
}

// Authenticate returns an HTTP middleware that admits only requests carrying
// a valid session token, taken from either
//
//  1. the Authorization header as "Bearer <token>", or
//  2. the admin_token session cookie.
//
// On success the principal is attached to the request context. Missing,
// malformed and expired tokens all get the same 401 response.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				writeAuthError(w)
				return
			}

			principal, err := verifier.VerifyToken(token)
			if err != nil {
				writeAuthError(w)
				return
			}

			noteAdmin(r.Context(), principal.Username)
			ctx := context.WithValue(r.Context(), AuthPrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest extracts a session token. A Bearer Authorization header
// takes precedence; the session cookie is only consulted when the header is
// absent.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// GetPrincipal extracts the authenticated admin from the context.
// Returns nil if no principal is present (i.e., unauthenticated request).
func GetPrincipal(ctx context.Context) *service.Principal {
	if p, ok := ctx.Value(AuthPrincipalKey).(*service.Principal); ok {
		return p
	}
	return nil
}

func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	// Same envelope as handler.writeError; handler imports this package.
	w.Write([]byte(`{"error":{"code":401,"message":"Unauthorized"}}`))
}

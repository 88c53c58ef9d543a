// Package middleware provides HTTP middleware for the gatewatch API.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gatewatch/gatewatch/internal/server/api/auth"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// claimsContextKey is the context key under which validated claims are stored.
const claimsContextKey contextKey = "jwt_claims"

// GetClaimsFromContext returns the JWT claims stored in the request context,
// or nil if the request was not authenticated.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// extractBearerToken extracts the token from an "Authorization: Bearer ..."
// header. The scheme comparison is case-insensitive. Returns the token and
// whether extraction succeeded.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	return header[len(prefix):], true
}

// JWTAuth returns middleware that requires a valid access token.
// On success the claims are stored in the request context; otherwise the
// request is rejected with 401.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "Missing or malformed authorization header")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that requires the authenticated user to have
// one of the given roles. Must be mounted after JWTAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeProblem(w, http.StatusForbidden, "Forbidden", "Insufficient privileges")
		})
	}
}

// RequireAdmin returns middleware that requires the authenticated user to be
// an administrator. Must be mounted after JWTAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole("admin")
}

// writeProblem writes an RFC 7807 problem response. The handlers package has
// richer problem helpers; middleware keeps its own small writer to avoid an
// import cycle.
func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "about:blank",
		"title":  title,
		"status": status,
		"detail": detail,
	})
}

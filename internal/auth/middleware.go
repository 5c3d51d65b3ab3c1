package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/thirdwave/contentapi/internal/server"
)

type contextKey string

// contextKeyRoles is the context key for the caller's role list.
const contextKeyRoles contextKey = "roles"

// Middleware returns an HTTP middleware that validates JWT Bearer tokens
// from the Authorization header and stores the caller's roles in the
// request context. Requests without an Authorization header pass through
// as anonymous; only a present but invalid token is rejected.
func Middleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				server.ErrorMessage(w, http.StatusUnauthorized, "Invalid authorization header.")
				return
			}

			claims, err := ValidateAccessToken(parts[1], jwtSecret)
			if err != nil {
				server.ErrorMessage(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyRoles, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RolesFromContext extracts the caller's roles from the request context.
// Anonymous callers have no roles.
func RolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(contextKeyRoles).([]string)
	return roles
}

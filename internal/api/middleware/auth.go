package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/partyquiz/partyquiz/internal/api/apierr"
	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/services/auth"
)

type contextKey string

const userContextKey contextKey = "user"

// Auth creates authentication middleware. Requests without a valid
// bearer token are rejected before they reach the handler.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			user, err := authService.VerifyToken(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetUser returns the authenticated user from the request context
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// MustGetUser returns the authenticated user or panics
func MustGetUser(ctx context.Context) *model.User {
	user := GetUser(ctx)
	if user == nil {
		panic("no user in context - auth middleware not applied?")
	}
	return user
}

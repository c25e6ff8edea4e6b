package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/pkg/identity"
	"github.com/zephy/zephy-api/internal/pkg/logger"
	"github.com/zephy/zephy-api/internal/pkg/response"
)

type contextKey string

const UserKey contextKey = "user"

// bearerToken returns the token from "Authorization: Bearer <token>", or "".
func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects requests without a valid bearer token.
// A nil provider means auth is not configured.
func RequireAuth(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Unauthorized(w, "Missing auth token")
				return
			}
			if provider == nil {
				response.ServerError(w, "Auth not configured")
				return
			}

			user, err := provider.GetUser(r.Context(), token)
			switch {
			case err == nil && user != nil:
			case errors.Is(err, identity.ErrNotConfigured):
				response.ServerError(w, "Auth not configured")
				return
			case err == nil, errors.Is(err, identity.ErrInvalidToken):
				response.Unauthorized(w, "Invalid token")
				return
			default:
				logger.LogError(r.Context(), err, "Auth verification failed")
				response.Unauthorized(w, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the user when the token resolves and continues
// anonymously on any failure.
func OptionalAuth(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token != "" && provider != nil {
				if user, err := provider.GetUser(r.Context(), token); err == nil && user != nil {
					r = r.WithContext(WithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user *identity.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser returns the authenticated user, or nil.
func GetUser(ctx context.Context) *identity.User {
	if user, ok := ctx.Value(UserKey).(*identity.User); ok {
		return user
	}
	return nil
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) uuid.UUID {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return uuid.Nil
}

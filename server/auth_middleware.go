package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-yoga-server/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated *users.User
	ContextKeyUser ContextKey = "user"
	// ContextKeyRequestID stores the request ID
	ContextKeyRequestID ContextKey = "request_id"
)

// RequireAuth is middleware that validates a Bearer token from the Authorization header.
// Rejected requests never reach the handler or any store behind it.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, msgBadCredentials)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				writeUnauthorized(w, msgBadCredentials)
				return
			}

			user, err := s.auth.Authenticate(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				log.Debug().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("bearer token rejected")
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next(w, r.WithContext(ctx))
		}
	}
}

// authenticatedUser returns the user RequireAuth put on the context
func authenticatedUser(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*users.User)
	return user, ok && user != nil
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

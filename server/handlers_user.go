package server

import (
	"net/http"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/rs/zerolog/log"
)

// GetUserHandler returns a user's profile. The password hash is never serialized.
func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		user, err := s.repos.Users.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// DeleteUserHandler lets callers delete their own account and nobody else's
func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		caller, ok := authenticatedUser(r.Context())
		if !ok {
			writeUnauthorized(w, msgBadCredentials)
			return
		}

		user, err := s.repos.Users.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if user.Email != caller.Email {
			writeError(w, r, errors.Wrapf(errors.ErrForbidden, "user %d deleting user %d", caller.ID, id))
			return
		}

		if err := s.repos.Users.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}

		log.Info().Int64("user_id", id).Msg("user deleted")
		w.WriteHeader(http.StatusOK)
	}
}

package server

import (
	"net/http"

	"github.com/jrsteele09/go-yoga-server/auth"
	"github.com/rs/zerolog/log"
)

// LoginHandler exchanges email and password for a bearer token
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		res, err := s.auth.Login(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, res)
	}
}

// RegisterHandler signs up a new user
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := s.auth.Register(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Info().Int64("user_id", user.ID).Msg("user registered")
		writeJSON(w, http.StatusOK, MessageResponse{Message: msgRegistered})
	}
}

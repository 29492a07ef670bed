package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/sessions"
	"github.com/rs/zerolog/log"
)

func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.repos.Sessions.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		session, err := s.repos.Sessions.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SessionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.checkTeacher(r.Context(), *req.TeacherID); err != nil {
			writeError(w, r, err)
			return
		}

		session := &sessions.Session{}
		req.apply(session)
		created, err := s.repos.Sessions.Create(r.Context(), session)
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Info().Int64("session_id", created.ID).Msg("session created")
		writeJSON(w, http.StatusOK, created)
	}
}

// UpdateSessionHandler edits a session's details; the roster is carried over unchanged
func (s *Server) UpdateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		var req SessionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.checkTeacher(r.Context(), *req.TeacherID); err != nil {
			writeError(w, r, err)
			return
		}

		session, err := s.repos.Sessions.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.apply(session)

		// a concurrent roster change bumps the version and this save reports ErrStaleVersion
		saved, err := s.repos.Sessions.Save(r.Context(), session)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func (s *Server) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := s.repos.Sessions.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}

		log.Info().Int64("session_id", id).Msg("session deleted")
		w.WriteHeader(http.StatusOK)
	}
}

// ParticipateHandler puts a user on a session's roster
func (s *Server) ParticipateHandler() http.HandlerFunc {
	return s.rosterHandler(s.roster.AddParticipant)
}

// NoLongerParticipateHandler takes a user off a session's roster
func (s *Server) NoLongerParticipateHandler() http.HandlerFunc {
	return s.rosterHandler(s.roster.RemoveParticipant)
}

func (s *Server) rosterHandler(transition func(ctx context.Context, sessionID, userID int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		userID, err := pathID(r, "userId")
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := transition(r.Context(), sessionID, userID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) checkTeacher(ctx context.Context, teacherID int64) error {
	_, err := s.repos.Teachers.GetByID(ctx, teacherID)
	if errors.Is(err, errors.ErrNotFound) {
		return errors.Wrapf(errors.ErrBadInputFormat, "teacher %d does not exist", teacherID)
	}
	return err
}

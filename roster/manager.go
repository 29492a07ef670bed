package roster

import (
	"context"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/sessions"
	"github.com/jrsteele09/go-yoga-server/users"
	"github.com/rs/zerolog"
)

// SessionStore is the part of the session store the roster needs.
type SessionStore interface {
	GetByID(ctx context.Context, id int64) (*sessions.Session, error)
	Save(ctx context.Context, session *sessions.Session) (*sessions.Session, error)
}

// UserStore resolves participants.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

// Manager applies participate / no-longer-participate transitions to session rosters.
// Transitions on the same session are serialized; different sessions run in parallel.
type Manager struct {
	sessions SessionStore
	users    UserStore
	locks    *sessionLocks
	log      zerolog.Logger
}

type ManagerOption func(*Manager)

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = logger
	}
}

func NewManager(sessionStore SessionStore, userStore UserStore, options ...ManagerOption) (*Manager, error) {
	if sessionStore == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[roster.NewManager] session store is required")
	}
	if userStore == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[roster.NewManager] user store is required")
	}

	m := &Manager{
		sessions: sessionStore,
		users:    userStore,
		locks:    newSessionLocks(),
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// AddParticipant puts userID on the session's roster.
// Fails with ErrNotFound for an unknown session or user (session checked first) and with
// ErrConflict when the user already participates. Nothing is saved on failure.
func (m *Manager) AddParticipant(ctx context.Context, sessionID, userID int64) error {
	unlock, err := m.locks.lock(ctx, sessionID)
	if err != nil {
		return errors.Wrapf(err, "[roster.AddParticipant] waiting for session %d", sessionID)
	}
	defer unlock()

	session, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return errors.Wrapf(err, "[roster.AddParticipant] session %d", sessionID)
	}

	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return errors.Wrapf(err, "[roster.AddParticipant] user %d", userID)
	}

	if !session.AddParticipant(user.ID) {
		return errors.Wrapf(errors.ErrConflict, "user %d already participating in session %d", userID, sessionID)
	}

	if _, err := m.sessions.Save(ctx, session); err != nil {
		return errors.Wrapf(err, "[roster.AddParticipant] save session %d", sessionID)
	}

	m.log.Debug().Int64("session_id", sessionID).Int64("user_id", userID).Msg("participant added")
	return nil
}

// RemoveParticipant takes userID off the session's roster. Only roster membership is
// checked; the user itself is not looked up.
// Fails with ErrNotFound for an unknown session and ErrConflict when the user is not participating.
func (m *Manager) RemoveParticipant(ctx context.Context, sessionID, userID int64) error {
	unlock, err := m.locks.lock(ctx, sessionID)
	if err != nil {
		return errors.Wrapf(err, "[roster.RemoveParticipant] waiting for session %d", sessionID)
	}
	defer unlock()

	session, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return errors.Wrapf(err, "[roster.RemoveParticipant] session %d", sessionID)
	}

	if !session.RemoveParticipant(userID) {
		return errors.Wrapf(errors.ErrConflict, "user %d not participating in session %d", userID, sessionID)
	}

	if _, err := m.sessions.Save(ctx, session); err != nil {
		return errors.Wrapf(err, "[roster.RemoveParticipant] save session %d", sessionID)
	}

	m.log.Debug().Int64("session_id", sessionID).Int64("user_id", userID).Msg("participant removed")
	return nil
}

package badgerdb

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/sessions"
)

var _ sessions.Repo = (*SessionRepo)(nil)

type SessionRepo struct {
	store *Store
}

// sessionRecord is the stored form; sessions.Session hides the version from JSON.
type sessionRecord struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	TeacherID   int64     `json:"teacher_id"`
	Users       []int64   `json:"users"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toSessionRecord(s *sessions.Session) sessionRecord {
	return sessionRecord{
		ID:          s.ID,
		Name:        s.Name,
		Date:        s.Date,
		Description: s.Description,
		TeacherID:   s.TeacherID,
		Users:       append([]int64{}, s.Users...),
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (r sessionRecord) toSession() *sessions.Session {
	return &sessions.Session{
		ID:          r.ID,
		Name:        r.Name,
		Date:        r.Date,
		Description: r.Description,
		TeacherID:   r.TeacherID,
		Users:       append([]int64{}, r.Users...),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (sr *SessionRepo) Create(_ context.Context, session *sessions.Session) (*sessions.Session, error) {
	id, err := nextID(sr.store.sessionSeq)
	if err != nil {
		return nil, errors.Wrapf(err, "[badgerdb.SessionRepo.Create] next id")
	}

	rec := toSessionRecord(session)
	rec.ID = id
	rec.Version = 1
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt

	if err := sr.store.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, idKey(sessionPrefix, id), rec)
	}); err != nil {
		return nil, errors.Wrapf(err, "[badgerdb.SessionRepo.Create]")
	}
	return rec.toSession(), nil
}

// Save writes the session if its version still matches the stored one.
func (sr *SessionRepo) Save(_ context.Context, session *sessions.Session) (*sessions.Session, error) {
	rec := toSessionRecord(session)

	err := sr.store.db.Update(func(txn *badger.Txn) error {
		var current sessionRecord
		if err := getJSON(txn, idKey(sessionPrefix, rec.ID), &current); err != nil {
			return err
		}
		if current.Version != rec.Version {
			return errors.Wrapf(errors.ErrStaleVersion, "session %d at version %d, got %d", rec.ID, current.Version, rec.Version)
		}
		rec.Version = current.Version + 1
		rec.CreatedAt = current.CreatedAt
		rec.UpdatedAt = time.Now().UTC()
		return setJSON(txn, idKey(sessionPrefix, rec.ID), rec)
	})
	if errors.Is(err, badger.ErrConflict) {
		return nil, errors.Wrapf(errors.ErrStaleVersion, "session %d", rec.ID)
	}
	if err != nil {
		return nil, notFound(err, "session %d", rec.ID)
	}
	return rec.toSession(), nil
}

func (sr *SessionRepo) GetByID(_ context.Context, id int64) (*sessions.Session, error) {
	var rec sessionRecord
	err := sr.store.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, idKey(sessionPrefix, id), &rec)
	})
	if err != nil {
		return nil, notFound(err, "session %d", id)
	}
	return rec.toSession(), nil
}

func (sr *SessionRepo) Delete(_ context.Context, id int64) error {
	err := sr.store.db.Update(func(txn *badger.Txn) error {
		key := idKey(sessionPrefix, id)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	return notFound(err, "session %d", id)
}

func (sr *SessionRepo) List(_ context.Context) ([]*sessions.Session, error) {
	var recs []*sessionRecord
	err := sr.store.db.View(func(txn *badger.Txn) error {
		var err error
		recs, err = scanJSON[sessionRecord](txn, sessionPrefix)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[badgerdb.SessionRepo.List]")
	}

	list := make([]*sessions.Session, 0, len(recs))
	for _, r := range recs {
		list = append(list, r.toSession())
	}
	return list, nil
}

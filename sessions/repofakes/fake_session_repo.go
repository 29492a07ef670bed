package fakesessionrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	sessions map[int64]*sessions.Session
	nextID   int64
	saves    int
	lock     sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[int64]*sessions.Session),
	}
}

func (sr *FakeSessionRepo) Create(_ context.Context, session *sessions.Session) (*sessions.Session, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	stored := session.Clone()
	if stored.ID == 0 {
		sr.nextID++
		stored.ID = sr.nextID
	} else if stored.ID > sr.nextID {
		sr.nextID = stored.ID
	}
	now := time.Now()
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	sr.sessions[stored.ID] = stored
	return stored.Clone(), nil
}

func (sr *FakeSessionRepo) Save(_ context.Context, session *sessions.Session) (*sessions.Session, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	current, ok := sr.sessions[session.ID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "session %d", session.ID)
	}
	if current.Version != session.Version {
		return nil, errors.Wrapf(errors.ErrStaleVersion, "session %d at version %d, got %d", session.ID, current.Version, session.Version)
	}

	stored := session.Clone()
	stored.Version = current.Version + 1
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now()
	sr.sessions[stored.ID] = stored
	sr.saves++
	return stored.Clone(), nil
}

func (sr *FakeSessionRepo) GetByID(_ context.Context, id int64) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	session, ok := sr.sessions[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "session %d", id)
	}
	return session.Clone(), nil
}

func (sr *FakeSessionRepo) Delete(_ context.Context, id int64) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if _, ok := sr.sessions[id]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "session %d", id)
	}
	delete(sr.sessions, id)
	return nil
}

func (sr *FakeSessionRepo) List(_ context.Context) ([]*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	list := make([]*sessions.Session, 0, len(sr.sessions))
	for _, s := range sr.sessions {
		list = append(list, s.Clone())
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// SaveCount reports how many successful saves the repo has seen.
func (sr *FakeSessionRepo) SaveCount() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.saves
}

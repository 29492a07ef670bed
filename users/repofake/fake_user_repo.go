package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[int64]*users.User
	emailIds map[string]int64 // email to user id
	nextID   int64
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[int64]*users.User),
		emailIds: make(map[string]int64),
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.emailIds[user.Email]; ok {
		return nil, errors.Wrapf(errors.ErrEmailTaken, "FakeUserRepo.Create %s", user.Email)
	}

	stored := user.Clone()
	if stored.ID == 0 {
		ur.nextID++
		stored.ID = ur.nextID
	} else if stored.ID > ur.nextID {
		ur.nextID = stored.ID
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	ur.users[stored.ID] = stored
	ur.emailIds[stored.Email] = stored.ID
	return stored.Clone(), nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "user %d", id)
	}
	return user.Clone(), nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "user %s", email)
	}
	return ur.users[id].Clone(), nil
}

func (ur *FakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	_, ok := ur.emailIds[email]
	return ok, nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, id int64) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "user %d", id)
	}
	delete(ur.emailIds, user.Email)
	delete(ur.users, id)
	return nil
}

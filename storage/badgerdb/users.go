package badgerdb

import (
	"context"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/users"
	"github.com/samber/lo"
)

var _ users.Repo = (*UserRepo)(nil)

type UserRepo struct {
	store *Store
}

// userRecord is the stored form; users.User hides the hash from JSON.
type userRecord struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"password_hash"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toUserRecord(u *users.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Admin:        u.Admin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRecord) toUser() *users.User {
	return &users.User{
		ID:           r.ID,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		Admin:        r.Admin,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (ur *UserRepo) Create(_ context.Context, user *users.User) (*users.User, error) {
	id, err := nextID(ur.store.userSeq)
	if err != nil {
		return nil, errors.Wrapf(err, "[badgerdb.UserRepo.Create] next id")
	}

	now := time.Now().UTC()
	rec := toUserRecord(user)
	rec.ID = id
	rec.CreatedAt = now
	rec.UpdatedAt = now

	err = ur.store.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(userEmailPrefix + rec.Email)
		if _, err := txn.Get(emailKey); err == nil {
			return errors.Wrapf(errors.ErrEmailTaken, "user %s", rec.Email)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(emailKey, []byte(strconv.FormatInt(id, 10))); err != nil {
			return err
		}
		return setJSON(txn, idKey(userPrefix, id), rec)
	})
	if errors.Is(err, badger.ErrConflict) {
		// a concurrent signup touched the same email key
		return nil, errors.Wrapf(errors.ErrEmailTaken, "user %s", rec.Email)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[badgerdb.UserRepo.Create]")
	}
	return rec.toUser(), nil
}

func (ur *UserRepo) GetByID(_ context.Context, id int64) (*users.User, error) {
	var rec userRecord
	err := ur.store.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, idKey(userPrefix, id), &rec)
	})
	if err != nil {
		return nil, notFound(err, "user %d", id)
	}
	return rec.toUser(), nil
}

func (ur *UserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	var rec userRecord
	err := ur.store.db.View(func(txn *badger.Txn) error {
		id, err := emailID(txn, email)
		if err != nil {
			return err
		}
		return getJSON(txn, idKey(userPrefix, id), &rec)
	})
	if err != nil {
		return nil, notFound(err, "user %s", email)
	}
	return rec.toUser(), nil
}

func (ur *UserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	err := ur.store.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(userEmailPrefix + email))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "[badgerdb.UserRepo.ExistsByEmail]")
	}
	return true, nil
}

// Delete removes the user and takes them off every session roster in the same transaction.
func (ur *UserRepo) Delete(_ context.Context, id int64) error {
	err := ur.store.db.Update(func(txn *badger.Txn) error {
		var rec userRecord
		if err := getJSON(txn, idKey(userPrefix, id), &rec); err != nil {
			return err
		}

		all, err := scanJSON[sessionRecord](txn, sessionPrefix)
		if err != nil {
			return err
		}
		for _, s := range all {
			if !lo.Contains(s.Users, id) {
				continue
			}
			s.Users = lo.Without(s.Users, id)
			s.Version++
			s.UpdatedAt = time.Now().UTC()
			if err := setJSON(txn, idKey(sessionPrefix, s.ID), s); err != nil {
				return err
			}
		}

		if err := txn.Delete([]byte(userEmailPrefix + rec.Email)); err != nil {
			return err
		}
		return txn.Delete(idKey(userPrefix, id))
	})
	if errors.Is(err, badger.ErrConflict) {
		return errors.Wrapf(errors.ErrStaleVersion, "user %d", id)
	}
	return notFound(err, "user %d", id)
}

func emailID(txn *badger.Txn, email string) (int64, error) {
	item, err := txn.Get([]byte(userEmailPrefix + email))
	if err != nil {
		return 0, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

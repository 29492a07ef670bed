package users

import "context"

// Repo is the user store. Lookups of absent users return an error wrapping errors.ErrNotFound.
type Repo interface {
	// Create stores a new user and assigns its ID. Fails with errors.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id int64) error
}

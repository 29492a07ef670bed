package postgres

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/users"
)

var _ users.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *sql.DB
}

const userColumns = `id, email, first_name, last_name, password, admin, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*users.User, error) {
	var u users.User
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Admin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *UserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	row := ur.db.QueryRowContext(ctx, `
		INSERT INTO users (email, first_name, last_name, password, admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		user.Email, user.FirstName, user.LastName, user.PasswordHash, user.Admin)

	created, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, errors.Wrapf(errors.ErrEmailTaken, "user %s", user.Email)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.UserRepo.Create]")
	}
	return created, nil
}

func (ur *UserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	u, err := scanUser(ur.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "user %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.UserRepo.GetByID]")
	}
	return u, nil
}

func (ur *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	u, err := scanUser(ur.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "user %s", email)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.UserRepo.GetByEmail]")
	}
	return u, nil
}

func (ur *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := ur.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "[postgres.UserRepo.ExistsByEmail]")
	}
	return exists, nil
}

// Delete removes the user. Roster entries go with it through ON DELETE CASCADE, and every
// session that lost a participant has its version bumped in the same transaction.
func (ur *UserRepo) Delete(ctx context.Context, id int64) error {
	tx, err := ur.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "[postgres.UserRepo.Delete] begin")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions SET version = version + 1, updated_at = now()
		WHERE id IN (SELECT session_id FROM participate WHERE user_id = $1)`, id); err != nil {
		return errors.Wrapf(err, "[postgres.UserRepo.Delete] bump versions")
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "[postgres.UserRepo.Delete]")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "user %d", id)
	}
	return tx.Commit()
}

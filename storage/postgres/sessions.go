package postgres

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/sessions"
)

var _ sessions.Repo = (*SessionRepo)(nil)

type SessionRepo struct {
	db *sql.DB
}

const sessionColumns = `id, name, description, date, teacher_id, version, created_at, updated_at`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanSession(row interface{ Scan(...any) error }) (*sessions.Session, error) {
	var s sessions.Session
	var teacherID sql.NullInt64
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Date, &teacherID, &s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.TeacherID = teacherID.Int64
	s.Users = []int64{}
	return &s, nil
}

func (sr *SessionRepo) Create(ctx context.Context, session *sessions.Session) (*sessions.Session, error) {
	tx, err := sr.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.Create] begin")
	}
	defer func() { _ = tx.Rollback() }()

	created, err := scanSession(tx.QueryRowContext(ctx, `
		INSERT INTO sessions (name, description, date, teacher_id, version)
		VALUES ($1, $2, $3, $4, 1)
		RETURNING `+sessionColumns,
		session.Name, session.Description, session.Date, nullableID(session.TeacherID)))
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.Create]")
	}

	if err := writeRoster(ctx, tx, created.ID, session.Users); err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.Create] roster")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.Create] commit")
	}
	created.Users = append(created.Users, session.Users...)
	return created, nil
}

// Save updates the row only while its version matches, then rewrites the roster, all in one transaction.
func (sr *SessionRepo) Save(ctx context.Context, session *sessions.Session) (*sessions.Session, error) {
	tx, err := sr.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.Save] begin")
	}
	defer func() { _ = tx.Rollback() }()

	saved, err := scanSession(tx.QueryRowContext(ctx, `
		UPDATE sessions
		SET name = $1, description = $2, date = $3, teacher_id = $4, version = version + 1, updated_at = now()
		WHERE id = $5 AND version = $6
		RETURNING `+sessionColumns,
		session.Name, session.Description, session.Date, nullableID(session.TeacherID), session.ID, session.Version))
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, session.ID).Scan(&exists); err != nil {
			return nil, errors.Wrapf(err, "[postgres.SessionRepo.Save] exists")
		}
		if !exists {
			return nil, errors.Wrapf(errors.ErrNotFound, "session %d", session.ID)
		}
		return nil, errors.Wrapf(errors.ErrStaleVersion, "session %d version %d", session.ID, session.Version)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.Save]")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM participate WHERE session_id = $1`, session.ID); err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.Save] clear roster")
	}
	if err := writeRoster(ctx, tx, session.ID, session.Users); err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.Save] roster")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.Save] commit")
	}

	saved.Users = append(saved.Users, session.Users...)
	return saved, nil
}

func (sr *SessionRepo) GetByID(ctx context.Context, id int64) (*sessions.Session, error) {
	s, err := scanSession(sr.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "session %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.GetByID]")
	}

	rosters, err := readRosters(ctx, sr.db, `WHERE session_id = $1`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.GetByID] roster")
	}
	s.Users = append(s.Users, rosters[id]...)
	return s, nil
}

func (sr *SessionRepo) Delete(ctx context.Context, id int64) error {
	res, err := sr.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "[postgres.SessionRepo.Delete]")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "session %d", id)
	}
	return nil
}

func (sr *SessionRepo) List(ctx context.Context) ([]*sessions.Session, error) {
	rows, err := sr.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY id`)
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.List]")
	}
	defer rows.Close()

	list := []*sessions.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "[postgres.SessionRepo.List] scan")
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.List]")
	}

	rosters, err := readRosters(ctx, sr.db, ``)
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.SessionRepo.List] rosters")
	}
	for _, s := range list {
		s.Users = append(s.Users, rosters[s.ID]...)
	}
	return list, nil
}

// writeRoster inserts the roster rows. A user deleted since the roster was read fails the
// foreign key and comes back as ErrNotFound.
func writeRoster(ctx context.Context, q queryer, sessionID int64, userIDs []int64) error {
	for pos, userID := range userIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO participate (session_id, user_id, position) VALUES ($1, $2, $3)`,
			sessionID, userID, pos); err != nil {
			if isForeignKeyViolation(err) {
				return errors.Wrapf(errors.ErrNotFound, "user %d", userID)
			}
			return err
		}
	}
	return nil
}

// readRosters returns participant IDs per session in roster order.
func readRosters(ctx context.Context, q queryer, where string, args ...any) (map[int64][]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT session_id, user_id FROM participate `+where+` ORDER BY session_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rosters := make(map[int64][]int64)
	for rows.Next() {
		var sessionID, userID int64
		if err := rows.Scan(&sessionID, &userID); err != nil {
			return nil, err
		}
		rosters[sessionID] = append(rosters[sessionID], userID)
	}
	return rosters, rows.Err()
}

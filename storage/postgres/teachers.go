package postgres

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/teachers"
)

var _ teachers.Repo = (*TeacherRepo)(nil)

type TeacherRepo struct {
	db *sql.DB
}

const teacherColumns = `id, first_name, last_name, created_at, updated_at`

func scanTeacher(row interface{ Scan(...any) error }) (*teachers.Teacher, error) {
	var t teachers.Teacher
	if err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (tr *TeacherRepo) Create(ctx context.Context, teacher *teachers.Teacher) (*teachers.Teacher, error) {
	t, err := scanTeacher(tr.db.QueryRowContext(ctx, `
		INSERT INTO teachers (first_name, last_name) VALUES ($1, $2)
		RETURNING `+teacherColumns, teacher.FirstName, teacher.LastName))
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.TeacherRepo.Create]")
	}
	return t, nil
}

func (tr *TeacherRepo) GetByID(ctx context.Context, id int64) (*teachers.Teacher, error) {
	t, err := scanTeacher(tr.db.QueryRowContext(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "teacher %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.TeacherRepo.GetByID]")
	}
	return t, nil
}

func (tr *TeacherRepo) List(ctx context.Context) ([]*teachers.Teacher, error) {
	rows, err := tr.db.QueryContext(ctx, `SELECT `+teacherColumns+` FROM teachers ORDER BY id`)
	if err != nil {
		return nil, errors.Wrapf(err, "[postgres.TeacherRepo.List]")
	}
	defer rows.Close()

	list := []*teachers.Teacher{}
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "[postgres.TeacherRepo.List] scan")
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

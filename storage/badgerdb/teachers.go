package badgerdb

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/teachers"
)

var _ teachers.Repo = (*TeacherRepo)(nil)

type TeacherRepo struct {
	store *Store
}

func (tr *TeacherRepo) Create(_ context.Context, teacher *teachers.Teacher) (*teachers.Teacher, error) {
	id, err := nextID(tr.store.teacherSeq)
	if err != nil {
		return nil, errors.Wrapf(err, "[badgerdb.TeacherRepo.Create] next id")
	}

	stored := *teacher
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	if err := tr.store.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, idKey(teacherPrefix, id), stored)
	}); err != nil {
		return nil, errors.Wrapf(err, "[badgerdb.TeacherRepo.Create]")
	}
	return &stored, nil
}

func (tr *TeacherRepo) GetByID(_ context.Context, id int64) (*teachers.Teacher, error) {
	var t teachers.Teacher
	err := tr.store.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, idKey(teacherPrefix, id), &t)
	})
	if err != nil {
		return nil, notFound(err, "teacher %d", id)
	}
	return &t, nil
}

func (tr *TeacherRepo) List(_ context.Context) ([]*teachers.Teacher, error) {
	var list []*teachers.Teacher
	err := tr.store.db.View(func(txn *badger.Txn) error {
		var err error
		list, err = scanJSON[teachers.Teacher](txn, teacherPrefix)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[badgerdb.TeacherRepo.List]")
	}
	if list == nil {
		list = []*teachers.Teacher{}
	}
	return list, nil
}

package teacherrepofakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/teachers"
)

var _ teachers.Repo = (*FakeTeacherRepo)(nil)

type FakeTeacherRepo struct {
	teachers map[int64]*teachers.Teacher
	nextID   int64
	lock     sync.RWMutex
}

func NewFakeTeacherRepo() *FakeTeacherRepo {
	return &FakeTeacherRepo{
		teachers: make(map[int64]*teachers.Teacher),
	}
}

func (tr *FakeTeacherRepo) Create(_ context.Context, teacher *teachers.Teacher) (*teachers.Teacher, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	stored := *teacher
	if stored.ID == 0 {
		tr.nextID++
		stored.ID = tr.nextID
	} else if stored.ID > tr.nextID {
		tr.nextID = stored.ID
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	tr.teachers[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (tr *FakeTeacherRepo) GetByID(_ context.Context, id int64) (*teachers.Teacher, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	teacher, ok := tr.teachers[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "teacher %d", id)
	}
	out := *teacher
	return &out, nil
}

func (tr *FakeTeacherRepo) List(_ context.Context) ([]*teachers.Teacher, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	list := make([]*teachers.Teacher, 0, len(tr.teachers))
	for _, t := range tr.teachers {
		out := *t
		list = append(list, &out)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

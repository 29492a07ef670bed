package teachers

import "context"

type Repo interface {
	Create(ctx context.Context, teacher *Teacher) (*Teacher, error)
	GetByID(ctx context.Context, id int64) (*Teacher, error)
	List(ctx context.Context) ([]*Teacher, error)
}

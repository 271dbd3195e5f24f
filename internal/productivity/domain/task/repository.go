package task

import "context"

// Repository is the source of truth for tasks.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, draft Draft) (*Task, error)
	Update(ctx context.Context, t *Task) (*Task, error)
	Delete(ctx context.Context, id int64) error
	AddRelation(ctx context.Context, id int64, kind RelationKind, otherID int64) error
	RemoveRelation(ctx context.Context, id int64, kind RelationKind, otherID int64) error
}

package repository

import (
	"context"

	"github.com/fastygo/taskflow/domain"
)

// TaskFilter narrows a task listing. UserEmail is required by implementations.
type TaskFilter struct {
	UserEmail string
	Priority  domain.Priority
}

type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Insert(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, id, owner string, patch domain.TaskPatch) error
	Delete(ctx context.Context, id, owner string) error
}

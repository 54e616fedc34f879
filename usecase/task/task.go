// Package task is the task store: owner-scoped writes over the repository
// and live filtered queries over the realtime hub.
package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/realtime"
	"github.com/fastygo/taskflow/repository"
	"github.com/fastygo/taskflow/usecase"
)

// Options tune the store.
type Options struct {
	// NotifyOnWrite signals the hub directly after each successful write.
	// Leave it off when a database change feed already reaches the hub.
	NotifyOnWrite bool
}

type UseCase struct {
	tasks  repository.TaskRepository
	hub    *realtime.Hub
	opts   Options
	logger *zap.Logger
}

var _ usecase.TaskStore = (*UseCase)(nil)

func New(tasks repository.TaskRepository, hub *realtime.Hub, opts Options, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		hub:    hub,
		opts:   opts,
		logger: logger,
	}
}

// Loader adapts the repository to the hub's snapshot loader.
func Loader(tasks repository.TaskRepository) realtime.Loader {
	return func(ctx context.Context, filter domain.Filter) ([]domain.Task, error) {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
		return tasks.List(ctx, repository.TaskFilter{UserEmail: filter.Value})
	}
}

// List returns every task owned by owner, oldest first.
func (uc *UseCase) List(ctx context.Context, owner string) ([]domain.Task, error) {
	if owner == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.tasks.List(ctx, repository.TaskFilter{UserEmail: owner})
}

func (uc *UseCase) Insert(ctx context.Context, task *domain.Task) (string, error) {
	if task == nil {
		return "", domain.ErrInvalidPayload
	}
	task.Title, _ = domain.NormalizeTitle(task.Title)
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	created, err := uc.tasks.Insert(ctx, task)
	if err != nil {
		return "", err
	}
	uc.logger.Debug("task inserted", zap.String("task_id", created.ID))
	uc.changed(created.UserEmail)
	return created.ID, nil
}

func (uc *UseCase) Update(ctx context.Context, id, owner string, patch domain.TaskPatch) error {
	if patch.IsEmpty() {
		return domain.ErrInvalidPayload
	}
	if patch.Title != nil {
		title, ok := domain.NormalizeTitle(*patch.Title)
		if !ok {
			return domain.NewError(domain.ErrCodeInvalid, "title must not be empty")
		}
		patch.Title = &title
	}
	if err := uc.tasks.Update(ctx, id, owner, patch); err != nil {
		return err
	}
	uc.changed(owner)
	return nil
}

func (uc *UseCase) Delete(ctx context.Context, id, owner string) error {
	if err := uc.tasks.Delete(ctx, id, owner); err != nil {
		return err
	}
	uc.changed(owner)
	return nil
}

func (uc *UseCase) Subscribe(ctx context.Context, filter domain.Filter, onSnapshot usecase.SnapshotFunc) (usecase.Subscription, error) {
	sub, err := uc.hub.Subscribe(ctx, filter, onSnapshot)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (uc *UseCase) changed(owner string) {
	if uc.opts.NotifyOnWrite {
		uc.hub.Notify(owner)
	}
}

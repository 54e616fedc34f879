package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

type UseCase struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		tasks:  tasks,
		logger: logger,
	}
}

// GetProfile returns the account with counters over all of its tasks.
func (uc *UseCase) GetProfile(ctx context.Context, email string) (*domain.Profile, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{UserEmail: user.Email})
	if err != nil {
		uc.logger.Error("failed to list tasks for profile", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	return &domain.Profile{
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		Summary:   domain.Summarize(tasks),
	}, nil
}

package profile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/testutil"
	"github.com/fastygo/taskflow/usecase/profile"
)

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewUserRepository()
	tasks := testutil.NewTaskRepository()
	require.NoError(t, users.Create(ctx, &domain.User{Email: "a@b.com", PasswordHash: "x"}))

	for _, task := range []domain.Task{
		{Title: "one", UserEmail: "a@b.com", Priority: domain.PriorityLow, Completed: true},
		{Title: "two", UserEmail: "a@b.com", Priority: domain.PriorityHigh},
		{Title: "other", UserEmail: "c@d.com", Priority: domain.PriorityHigh},
	} {
		task := task
		_, err := tasks.Insert(ctx, &task)
		require.NoError(t, err)
	}

	got, err := profile.New(users, tasks, nil).GetProfile(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
	assert.Equal(t, domain.Summary{Total: 2, Completed: 1, Pending: 1}, got.Summary)
}

func TestGetProfileUnknownUser(t *testing.T) {
	uc := profile.New(testutil.NewUserRepository(), testutil.NewTaskRepository(), nil)
	_, err := uc.GetProfile(context.Background(), "nobody@b.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

package taskview_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase"
	"github.com/fastygo/taskflow/usecase/taskview"
)

func TestRegisterCommands(t *testing.T) {
	d := usecase.NewDispatcher()
	taskview.RegisterCommands(d)
	assert.Equal(t, []string{"add", "cancel-edit", "delete", "edit", "filter", "rename", "toggle"}, d.Commands())
}

func TestCommandsDriveView(t *testing.T) {
	f := newFixture(t, "a@b.com")
	f.mount(t)
	d := usecase.NewDispatcher()
	taskview.RegisterCommands(d)
	ctx := context.Background()

	run := func(name string, fields map[string]string) {
		t.Helper()
		_, err := d.ExecuteCommand(ctx, name, taskview.Action{View: f.view, Fields: fields})
		require.NoError(t, err)
	}

	run(taskview.ActionAdd, map[string]string{"title": "Buy milk", "priority": "high"})
	tasks := f.view.State().Tasks
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	run(taskview.ActionToggle, map[string]string{"id": id, "completed": "false"})
	assert.True(t, f.view.State().Tasks[0].Completed)

	run(taskview.ActionEdit, map[string]string{"id": id, "title": "Buy milk"})
	assert.True(t, f.view.State().Editing(id))
	run(taskview.ActionCancelEdit, nil)
	assert.False(t, f.view.State().Editing(id))

	run(taskview.ActionRename, map[string]string{"id": id, "title": "Buy oat milk"})
	assert.Equal(t, "Buy oat milk", f.view.State().Tasks[0].Title)

	run(taskview.ActionFilter, map[string]string{"priority": "low"})
	assert.Empty(t, f.view.State().Visible())

	run(taskview.ActionDelete, map[string]string{"id": id})
	assert.Empty(t, f.view.State().Tasks)
}

func TestCommandRejectsForeignPayload(t *testing.T) {
	d := usecase.NewDispatcher()
	taskview.RegisterCommands(d)
	_, err := d.ExecuteCommand(context.Background(), taskview.ActionAdd, "nope")
	assert.Error(t, err)

	_, err = d.ExecuteCommand(context.Background(), taskview.ActionDelete, taskview.Action{View: taskview.NewView("x", taskview.Deps{})})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

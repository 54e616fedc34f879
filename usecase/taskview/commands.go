package taskview

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fastygo/taskflow/usecase"
)

// Action names accepted by the task board forms.
const (
	ActionAdd        = "add"
	ActionToggle     = "toggle"
	ActionDelete     = "delete"
	ActionEdit       = "edit"
	ActionCancelEdit = "cancel-edit"
	ActionRename     = "rename"
	ActionFilter     = "filter"
)

// Action is the payload of every task board command.
type Action struct {
	View   *View
	Fields map[string]string
}

func (a Action) field(name string) string {
	return a.Fields[name]
}

// RegisterCommands binds the task board actions to d.
func RegisterCommands(d *usecase.Dispatcher) {
	d.RegisterCommand(ActionAdd, command(func(ctx context.Context, a Action) error {
		return a.View.AddTask(ctx, a.field("title"), a.field("dueDate"), a.field("priority"))
	}))
	d.RegisterCommand(ActionToggle, command(func(ctx context.Context, a Action) error {
		current, err := strconv.ParseBool(a.field("completed"))
		if err != nil {
			current = false
		}
		return a.View.ToggleTask(ctx, a.field("id"), current)
	}))
	d.RegisterCommand(ActionDelete, command(func(ctx context.Context, a Action) error {
		return a.View.DeleteTask(ctx, a.field("id"))
	}))
	d.RegisterCommand(ActionEdit, command(func(ctx context.Context, a Action) error {
		a.View.StartEdit(a.field("id"), a.field("title"))
		return nil
	}))
	d.RegisterCommand(ActionCancelEdit, command(func(ctx context.Context, a Action) error {
		a.View.CancelEdit()
		return nil
	}))
	d.RegisterCommand(ActionRename, command(func(ctx context.Context, a Action) error {
		return a.View.UpdateTask(ctx, a.field("id"), a.field("title"))
	}))
	d.RegisterCommand(ActionFilter, command(func(ctx context.Context, a Action) error {
		a.View.FilterByPriority(a.field("priority"))
		return nil
	}))
}

func command(fn func(ctx context.Context, a Action) error) usecase.CommandHandler {
	return func(ctx context.Context, payload interface{}) (interface{}, error) {
		a, ok := payload.(Action)
		if !ok || a.View == nil {
			return nil, fmt.Errorf("unexpected task action payload %T", payload)
		}
		return nil, fn(ctx, a)
	}
}

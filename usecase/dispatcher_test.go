package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()
	d.RegisterCommand("echo", func(ctx context.Context, payload interface{}) (interface{}, error) {
		return payload, nil
	})
	d.RegisterCommand("fail", func(ctx context.Context, payload interface{}) (interface{}, error) {
		return nil, errors.New("boom")
	})

	assert.True(t, d.Has("echo"))
	assert.False(t, d.Has("missing"))
	assert.Equal(t, []string{"echo", "fail"}, d.Commands())

	out, err := d.ExecuteCommand(context.Background(), "echo", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, out)

	_, err = d.ExecuteCommand(context.Background(), "fail", nil)
	assert.EqualError(t, err, "boom")

	_, err = d.ExecuteCommand(context.Background(), "missing", nil)
	assert.EqualError(t, err, "command handler missing not registered")
}

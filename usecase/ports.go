package usecase

import (
	"context"

	"github.com/fastygo/taskflow/domain"
)

// Paths the views navigate between.
const (
	PathLanding = "/"
	PathTasks   = "/tasks"
)

// SessionStore is the per-browser key/value storage holding the signed-in email.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Navigator performs a client-side route transition.
type Navigator interface {
	GoTo(path string)
}

// IdentityClient signs users up, in and out with email and password. Failures
// carry a human-readable message meant to be shown as-is.
type IdentityClient interface {
	CreateAccount(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
}

// SnapshotFunc receives the full result set of a live query.
type SnapshotFunc func(tasks []domain.Task)

// Subscription is a live query registration. Cancel is idempotent.
type Subscription interface {
	Cancel()
}

// TaskStore is the task collection with a live filtered query primitive.
type TaskStore interface {
	Insert(ctx context.Context, task *domain.Task) (string, error)
	Update(ctx context.Context, id, owner string, patch domain.TaskPatch) error
	Delete(ctx context.Context, id, owner string) error
	Subscribe(ctx context.Context, filter domain.Filter, onSnapshot SnapshotFunc) (Subscription, error)
}

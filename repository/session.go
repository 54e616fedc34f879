package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskflow/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, ttl time.Duration) error
}

// SessionSweeper is implemented by stores without native key expiry.
type SessionSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

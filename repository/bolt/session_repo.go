package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/infrastructure/boltdb"
	"github.com/fastygo/taskflow/repository"
)

// SessionRepository keeps sessions in a local BoltDB bucket. Expired entries
// are hidden on read and removed by DeleteExpired.
type SessionRepository struct {
	store *boltdb.Store
	ttl   time.Duration
	now   func() time.Time
}

var (
	_ repository.SessionRepository = (*SessionRepository)(nil)
	_ repository.SessionSweeper    = (*SessionRepository)(nil)
)

// NewSessionRepository creates a Bolt-backed session repository.
func NewSessionRepository(store *boltdb.Store, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionRepository{store: store, ttl: ttl, now: time.Now}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := r.store.Get(id)
	if err != nil {
		if errors.Is(err, boltdb.ErrKeyNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	if session.IsExpired(r.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.store.Put(session.ID, payload)
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Delete(id)
}

func (r *SessionRepository) Extend(ctx context.Context, id string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	session.ExpiresAt = r.now().Add(ttl)
	return r.Save(ctx, session)
}

// DeleteExpired removes sessions whose expiry is not after now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return r.store.DeleteWhere(func(_, value []byte) bool {
		var session domain.Session
		if err := json.Unmarshal(value, &session); err != nil {
			return true
		}
		return session.IsExpired(now)
	})
}

// Size reports how many sessions are stored, expired or not.
func (r *SessionRepository) Size() (int, error) {
	return r.store.Size()
}

// Package session exposes one browser session as a small key/value store,
// the way a page would use local storage.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

// Scope binds a session repository to a single session id. The zero id is a
// browser without a cookie yet: reads report absent without touching the
// repository and the first Set asks IDFunc for a fresh id.
type Scope struct {
	repo repository.SessionRepository
	id   string
	ttl  time.Duration

	// IDFunc mints an id on first write; the caller usually also sets the cookie.
	IDFunc func() string
}

func NewScope(repo repository.SessionRepository, id string, ttl time.Duration) *Scope {
	return &Scope{repo: repo, id: id, ttl: ttl}
}

// ID returns the bound session id, which may change after the first Set.
func (s *Scope) ID() string {
	return s.id
}

func (s *Scope) Get(ctx context.Context, key string) (string, bool, error) {
	if s.id == "" {
		return "", false, nil
	}
	sess, err := s.repo.Get(ctx, s.id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	v, ok := sess.Value(key)
	return v, ok, nil
}

func (s *Scope) Set(ctx context.Context, key, value string) error {
	if s.id == "" {
		if s.IDFunc == nil {
			return domain.ErrSessionNotFound
		}
		s.id = s.IDFunc()
	}

	sess, err := s.repo.Get(ctx, s.id)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		now := time.Now()
		sess = &domain.Session{ID: s.id, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}
	case err != nil:
		return err
	}
	if sess.Values == nil {
		sess.Values = make(map[string]string, 1)
	}
	sess.Values[key] = value
	return s.repo.Save(ctx, sess)
}

// Remove deletes key; the session record itself goes away once it is empty.
func (s *Scope) Remove(ctx context.Context, key string) error {
	if s.id == "" {
		return nil
	}
	sess, err := s.repo.Get(ctx, s.id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	delete(sess.Values, key)
	if len(sess.Values) == 0 {
		return s.repo.Delete(ctx, s.id)
	}
	return s.repo.Save(ctx, sess)
}

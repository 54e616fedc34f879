// Package testutil provides in-memory fakes of the task list collaborators.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User

	GetErr    error
	CreateErr error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	if _, ok := r.users[user.Email]; ok {
		return domain.ErrEmailInUse
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.Email] = *user
	return nil
}

// SessionRepository is an in-memory repository.SessionRepository.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	Calls    int
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.Session)}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	values := make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		values[k] = v
	}
	s.Values = values
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) Extend(ctx context.Context, id string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.ExpiresAt = time.Now().Add(ttl)
	r.sessions[id] = s
	return nil
}

// Has reports whether a session record exists.
func (r *SessionRepository) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}

// TaskRepository is an in-memory repository.TaskRepository.
type TaskRepository struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
	seq   int

	ListErr   error
	InsertErr error
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]domain.Task)}
}

func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	out := make([]domain.Task, 0)
	for _, t := range r.tasks {
		if t.UserEmail != filter.UserEmail {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *TaskRepository) Insert(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return nil, r.InsertErr
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	r.seq++
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Unix(int64(r.seq), 0)
	}
	r.tasks[task.ID] = *task
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, id, owner string, patch domain.TaskPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserEmail != owner {
		return domain.ErrTaskNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	r.tasks[id] = t
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserEmail != owner {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase"
)

// Sessions is an in-memory usecase.SessionStore.
type Sessions struct {
	mu     sync.Mutex
	values map[string]string

	Gets, Sets, Removes int
	SetErr              error
}

func NewSessions() *Sessions {
	return &Sessions{values: make(map[string]string)}
}

func (s *Sessions) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Gets++
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Sessions) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sets++
	if s.SetErr != nil {
		return s.SetErr
	}
	s.values[key] = value
	return nil
}

func (s *Sessions) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Removes++
	delete(s.values, key)
	return nil
}

// Value reads key without counting as a Get.
func (s *Sessions) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Navigator records every GoTo call.
type Navigator struct {
	mu    sync.Mutex
	paths []string

	// OnGoTo runs before the path is recorded, for ordering assertions.
	OnGoTo func(path string)
}

func (n *Navigator) GoTo(path string) {
	if n.OnGoTo != nil {
		n.OnGoTo(path)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *Navigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// Last returns the most recent destination or "".
func (n *Navigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

// Identity is a scripted usecase.IdentityClient.
type Identity struct {
	mu       sync.Mutex
	accounts map[string]string

	SignUps, SignIns, SignOuts int
	Err                        error
}

func NewIdentity() *Identity {
	return &Identity{accounts: make(map[string]string)}
}

func (i *Identity) CreateAccount(ctx context.Context, email, password string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.SignUps++
	if i.Err != nil {
		return i.Err
	}
	if _, ok := i.accounts[email]; ok {
		return domain.ErrEmailInUse
	}
	i.accounts[email] = password
	return nil
}

func (i *Identity) SignIn(ctx context.Context, email, password string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.SignIns++
	if i.Err != nil {
		return i.Err
	}
	if pw, ok := i.accounts[email]; !ok || pw != password {
		return domain.ErrInvalidCredential
	}
	return nil
}

func (i *Identity) SignOut(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.SignOuts++
	return nil
}

// UpdateCall captures one TaskStore.Update invocation.
type UpdateCall struct {
	ID    string
	Owner string
	Patch domain.TaskPatch
}

// FakeSubscription is a live query registered with TaskStore.
type FakeSubscription struct {
	Filter    domain.Filter
	Fn        usecase.SnapshotFunc
	cancelled bool
	store     *TaskStore
}

func (s *FakeSubscription) Cancel() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.cancelled = true
}

func (s *FakeSubscription) Cancelled() bool {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return s.cancelled
}

// TaskStore is an in-memory usecase.TaskStore that emits snapshots
// synchronously after every mutation.
type TaskStore struct {
	mu    sync.Mutex
	tasks []domain.Task
	subs  []*FakeSubscription

	Inserts []domain.Task
	Updates []UpdateCall
	Deletes []string

	InsertErr, UpdateErr, DeleteErr, SubscribeErr error
}

var _ usecase.TaskStore = (*TaskStore)(nil)

func NewTaskStore(seed ...domain.Task) *TaskStore {
	return &TaskStore{tasks: append([]domain.Task(nil), seed...)}
}

// Calls counts every store operation, subscriptions included.
func (s *TaskStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Inserts) + len(s.Updates) + len(s.Deletes) + len(s.subs)
}

// Subscriptions returns every subscription ever opened.
func (s *TaskStore) Subscriptions() []*FakeSubscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*FakeSubscription(nil), s.subs...)
}

func (s *TaskStore) Insert(ctx context.Context, task *domain.Task) (string, error) {
	s.mu.Lock()
	s.Inserts = append(s.Inserts, *task)
	if s.InsertErr != nil {
		s.mu.Unlock()
		return "", s.InsertErr
	}
	stored := *task
	stored.ID = uuid.NewString()
	s.tasks = append(s.tasks, stored)
	s.mu.Unlock()

	s.emit(stored.UserEmail)
	return stored.ID, nil
}

func (s *TaskStore) Update(ctx context.Context, id, owner string, patch domain.TaskPatch) error {
	s.mu.Lock()
	s.Updates = append(s.Updates, UpdateCall{ID: id, Owner: owner, Patch: patch})
	if s.UpdateErr != nil {
		s.mu.Unlock()
		return s.UpdateErr
	}
	found := false
	for i := range s.tasks {
		if s.tasks[i].ID != id || s.tasks[i].UserEmail != owner {
			continue
		}
		if patch.Title != nil {
			s.tasks[i].Title = *patch.Title
		}
		if patch.Completed != nil {
			s.tasks[i].Completed = *patch.Completed
		}
		found = true
	}
	s.mu.Unlock()

	if !found {
		return domain.ErrTaskNotFound
	}
	s.emit(owner)
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id, owner string) error {
	s.mu.Lock()
	s.Deletes = append(s.Deletes, id)
	if s.DeleteErr != nil {
		s.mu.Unlock()
		return s.DeleteErr
	}
	kept := s.tasks[:0]
	found := false
	for _, t := range s.tasks {
		if t.ID == id && t.UserEmail == owner {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	s.mu.Unlock()

	if !found {
		return domain.ErrTaskNotFound
	}
	s.emit(owner)
	return nil
}

func (s *TaskStore) Subscribe(ctx context.Context, filter domain.Filter, onSnapshot usecase.SnapshotFunc) (usecase.Subscription, error) {
	if s.SubscribeErr != nil {
		return nil, s.SubscribeErr
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	sub := &FakeSubscription{Filter: filter, Fn: onSnapshot, store: s}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	snapshot := s.snapshotLocked(filter.Value)
	s.mu.Unlock()

	onSnapshot(snapshot)
	return sub, nil
}

// Snapshot returns the tasks currently owned by owner.
func (s *TaskStore) Snapshot(owner string) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(owner)
}

func (s *TaskStore) snapshotLocked(owner string) []domain.Task {
	out := make([]domain.Task, 0)
	for _, t := range s.tasks {
		if t.UserEmail == owner {
			out = append(out, t)
		}
	}
	return out
}

func (s *TaskStore) emit(owner string) {
	s.mu.Lock()
	var targets []*FakeSubscription
	for _, sub := range s.subs {
		if !sub.cancelled && sub.Filter.Matches(owner) {
			targets = append(targets, sub)
		}
	}
	snapshot := s.snapshotLocked(owner)
	s.mu.Unlock()

	for _, sub := range targets {
		sub.Fn(append([]domain.Task(nil), snapshot...))
	}
}

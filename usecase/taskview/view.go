package taskview

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase"
)

// Deps are the collaborators of one view. Sessions and Nav are bound to the
// browser the view serves.
type Deps struct {
	Sessions usecase.SessionStore
	Tasks    usecase.TaskStore
	Identity usecase.IdentityClient
	Nav      usecase.Navigator
	Logger   *zap.Logger
}

// View owns at most one live subscription between Mount and Unmount.
// Snapshots from an older mount are ignored through the generation counter.
type View struct {
	id       string
	sessions usecase.SessionStore
	tasks    usecase.TaskStore
	identity usecase.IdentityClient
	nav      usecase.Navigator
	logger   *zap.Logger

	mu         sync.Mutex
	state      State
	sub        usecase.Subscription
	mounted    bool
	generation uint64
	onChange   func(State)
}

func NewView(id string, deps Deps) *View {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{
		id:       id,
		sessions: deps.Sessions,
		tasks:    deps.Tasks,
		identity: deps.Identity,
		nav:      deps.Nav,
		logger:   logger.With(zap.String("view_id", id)),
		state:    State{Filter: domain.FilterAll},
	}
}

func (v *View) ID() string {
	return v.id
}

// OnChange installs the render callback. fn runs with the view locked, so it
// must not block or call back into the view.
func (v *View) OnChange(fn func(State)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

// State returns a copy of the current view-model.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// Mount reads the session and subscribes to the owner's tasks. Without a
// session it navigates to the landing page and never touches the task store.
// Mounting an already mounted view does nothing.
func (v *View) Mount(ctx context.Context) error {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return nil
	}
	v.mounted = true
	v.generation++
	gen := v.generation
	v.mu.Unlock()

	email, ok, err := v.sessions.Get(ctx, domain.SessionKeyUserEmail)
	if err != nil {
		v.abortMount(gen)
		return err
	}
	if !ok || email == "" {
		v.abortMount(gen)
		v.logger.Debug("no session, leaving task view")
		v.nav.GoTo(usecase.PathLanding)
		return nil
	}

	v.mu.Lock()
	if v.generation != gen {
		v.mu.Unlock()
		return nil
	}
	v.state.Email = email
	v.mu.Unlock()

	sub, err := v.tasks.Subscribe(ctx, domain.OwnerFilter(email), func(tasks []domain.Task) {
		v.receive(gen, tasks)
	})
	if err != nil {
		v.abortMount(gen)
		return err
	}

	v.mu.Lock()
	if v.generation != gen {
		v.mu.Unlock()
		sub.Cancel()
		return nil
	}
	v.sub = sub
	v.mu.Unlock()
	v.logger.Debug("task view mounted")
	return nil
}

// Unmount cancels the subscription. It is safe to call more than once.
func (v *View) Unmount() {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	v.mounted = false
	v.generation++
	sub := v.sub
	v.sub = nil
	v.state = Reduce(v.state, Unmounted{})
	v.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	v.logger.Debug("task view unmounted")
}

// AddTask inserts a task owned by the session email. A blank title is a
// no-op. The list only changes once the next snapshot arrives.
func (v *View) AddTask(ctx context.Context, title, dueDate, priority string) error {
	title, ok := domain.NormalizeTitle(title)
	if !ok {
		return nil
	}
	draft := Draft{Title: title, DueDate: dueDate, Priority: priority}

	due, err := domain.ParseDueDate(dueDate)
	if err != nil {
		v.rejectDraft(draft, err)
		return err
	}
	level, err := domain.ParsePriority(priority)
	if err != nil {
		v.rejectDraft(draft, err)
		return err
	}
	owner, err := v.owner(ctx)
	if err != nil {
		return err
	}

	task := &domain.Task{
		Title:     title,
		UserEmail: owner,
		DueDate:   due,
		Priority:  level,
		Completed: false,
	}
	if _, err := v.tasks.Insert(ctx, task); err != nil {
		v.rejectDraft(draft, err)
		return err
	}
	v.apply(DraftCleared{})
	return nil
}

// rejectDraft keeps the form contents and shows why they were refused.
func (v *View) rejectDraft(d Draft, err error) {
	d.Error = err.Error()
	v.apply(DraftChanged{Draft: d})
}

func (v *View) DeleteTask(ctx context.Context, id string) error {
	owner, err := v.owner(ctx)
	if err != nil {
		return err
	}
	return v.tasks.Delete(ctx, id, owner)
}

// ToggleTask writes the opposite of current; the local list is not flipped.
func (v *View) ToggleTask(ctx context.Context, id string, current bool) error {
	owner, err := v.owner(ctx)
	if err != nil {
		return err
	}
	completed := !current
	return v.tasks.Update(ctx, id, owner, domain.TaskPatch{Completed: &completed})
}

func (v *View) StartEdit(id, title string) {
	v.apply(EditStarted{ID: id, Title: title})
}

func (v *View) CancelEdit() {
	v.apply(EditCancelled{})
}

// UpdateTask renames a task. A blank title is a no-op and keeps the editor open.
func (v *View) UpdateTask(ctx context.Context, id, newTitle string) error {
	title, ok := domain.NormalizeTitle(newTitle)
	if !ok {
		return nil
	}
	owner, err := v.owner(ctx)
	if err != nil {
		return err
	}
	if err := v.tasks.Update(ctx, id, owner, domain.TaskPatch{Title: &title}); err != nil {
		return err
	}
	v.apply(EditCancelled{})
	return nil
}

// FilterByPriority narrows the rendered list without querying the store.
func (v *View) FilterByPriority(level string) {
	v.apply(FilterChanged{Filter: domain.ParsePriorityFilter(level)})
}

// Logout signs out and clears the session before navigating away, so a
// mount racing the redirect finds no session.
func (v *View) Logout(ctx context.Context) error {
	if err := v.identity.SignOut(ctx); err != nil {
		v.logger.Warn("sign out failed", zap.Error(err))
	}
	if err := v.sessions.Remove(ctx, domain.SessionKeyUserEmail); err != nil {
		return err
	}
	v.Unmount()
	v.nav.GoTo(usecase.PathLanding)
	return nil
}

// Expire unmounts the view and sends its tab to the landing page. Used when
// the session it was mounted with ended in another tab.
func (v *View) Expire() {
	v.Unmount()
	if v.nav != nil {
		v.nav.GoTo(usecase.PathLanding)
	}
}

func (v *View) receive(gen uint64, tasks []domain.Task) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted || gen != v.generation {
		v.logger.Debug("stale snapshot dropped")
		return
	}
	v.state = Reduce(v.state, SnapshotReceived{Tasks: tasks})
	v.notifyLocked()
}

func (v *View) apply(ev Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = Reduce(v.state, ev)
	v.notifyLocked()
}

func (v *View) notifyLocked() {
	if v.onChange != nil {
		v.onChange(v.snapshotLocked())
	}
}

func (v *View) snapshotLocked() State {
	s := v.state
	s.Tasks = append([]domain.Task(nil), v.state.Tasks...)
	return s
}

func (v *View) abortMount(gen uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.generation == gen {
		v.mounted = false
	}
}

// owner is the mounted email, or the session email for a view that serves a
// single action without being mounted.
func (v *View) owner(ctx context.Context) (string, error) {
	v.mu.Lock()
	email := v.state.Email
	v.mu.Unlock()
	if email != "" {
		return email, nil
	}
	if v.sessions == nil {
		return "", domain.ErrUnauthorized
	}

	email, ok, err := v.sessions.Get(ctx, domain.SessionKeyUserEmail)
	if err != nil {
		return "", err
	}
	if !ok || email == "" {
		return "", domain.ErrUnauthorized
	}
	return email, nil
}

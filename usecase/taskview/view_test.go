package taskview_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/testutil"
	"github.com/fastygo/taskflow/usecase"
	"github.com/fastygo/taskflow/usecase/landing"
	"github.com/fastygo/taskflow/usecase/taskview"
)

type fixture struct {
	sessions *testutil.Sessions
	store    *testutil.TaskStore
	identity *testutil.Identity
	nav      *testutil.Navigator
	view     *taskview.View
	renders  int
}

func newFixture(t *testing.T, email string, seed ...domain.Task) *fixture {
	t.Helper()
	f := &fixture{
		sessions: testutil.NewSessions(),
		store:    testutil.NewTaskStore(seed...),
		identity: testutil.NewIdentity(),
		nav:      &testutil.Navigator{},
	}
	if email != "" {
		require.NoError(t, f.sessions.Set(context.Background(), domain.SessionKeyUserEmail, email))
	}
	f.view = taskview.NewView("view-1", taskview.Deps{
		Sessions: f.sessions,
		Tasks:    f.store,
		Identity: f.identity,
		Nav:      f.nav,
	})
	f.view.OnChange(func(taskview.State) { f.renders++ })
	return f
}

func (f *fixture) mount(t *testing.T) {
	t.Helper()
	require.NoError(t, f.view.Mount(context.Background()))
}

func TestMountWithoutSessionRedirects(t *testing.T) {
	f := newFixture(t, "")
	f.mount(t)

	assert.Equal(t, []string{usecase.PathLanding}, f.nav.Paths())
	assert.Zero(t, f.store.Calls())
	assert.False(t, f.view.Mounted())
}

func TestMountSubscribesOnceForSessionOwner(t *testing.T) {
	f := newFixture(t, "a@b.com",
		domain.Task{ID: "1", Title: "mine", UserEmail: "a@b.com", Priority: domain.PriorityLow},
		domain.Task{ID: "2", Title: "theirs", UserEmail: "c@d.com", Priority: domain.PriorityHigh},
	)
	f.mount(t)
	f.mount(t)

	subs := f.store.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, domain.OwnerFilter("a@b.com"), subs[0].Filter)

	state := f.view.State()
	assert.True(t, state.Loaded)
	assert.Equal(t, "a@b.com", state.Email)
	require.Len(t, state.Tasks, 1)
	for _, task := range state.Tasks {
		assert.Equal(t, "a@b.com", task.UserEmail)
	}
	assert.Empty(t, f.nav.Paths())
}

func TestAddTaskBlankTitleIsNoop(t *testing.T) {
	f := newFixture(t, "a@b.com")
	f.mount(t)
	before := f.view.State()

	for _, title := range []string{"", "   ", "\t\n"} {
		require.NoError(t, f.view.AddTask(context.Background(), title, "", "high"))
	}

	assert.Empty(t, f.store.Inserts)
	assert.Equal(t, before, f.view.State())
}

func TestAddTaskScenario(t *testing.T) {
	f := newFixture(t, "a@b.com")
	f.mount(t)
	before := f.view.State().Summary()

	require.NoError(t, f.view.AddTask(context.Background(), "Buy milk", "", "high"))

	require.Len(t, f.store.Inserts, 1)
	inserted := f.store.Inserts[0]
	assert.Equal(t, "a@b.com", inserted.UserEmail)
	assert.False(t, inserted.Completed)
	assert.Equal(t, domain.PriorityHigh, inserted.Priority)
	assert.Nil(t, inserted.DueDate)

	state := f.view.State()
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "Buy milk", state.Tasks[0].Title)
	after := state.Summary()
	assert.Equal(t, before.Total+1, after.Total)
	assert.Equal(t, before.Pending+1, after.Pending)
	assert.Equal(t, taskview.Draft{}, state.Draft)
}

func TestAddTaskWithDueDate(t *testing.T) {
	f := newFixture(t, "a@b.com")
	f.mount(t)

	require.NoError(t, f.view.AddTask(context.Background(), "Pay rent", "2026-11-01", ""))
	require.Len(t, f.store.Inserts, 1)
	require.NotNil(t, f.store.Inserts[0].DueDate)
	assert.Equal(t, "2026-11-01", *f.store.Inserts[0].DueDate)
	assert.Equal(t, domain.PriorityMedium, f.store.Inserts[0].Priority)

	err := f.view.AddTask(context.Background(), "Pay rent", "01/11/2026", "high")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Len(t, f.store.Inserts, 1)
	draft := f.view.State().Draft
	assert.Equal(t, "01/11/2026", draft.DueDate)
	assert.Equal(t, "high", draft.Priority)
	assert.Contains(t, draft.Error, "YYYY-MM-DD")

	require.NoError(t, f.view.AddTask(context.Background(), "Pay rent", "2026-11-01", "high"))
	assert.Equal(t, taskview.Draft{}, f.view.State().Draft)
}

func TestAddTaskStoreFailureIsReturnedWithoutLocalChange(t *testing.T) {
	f := newFixture(t, "a@b.com")
	f.mount(t)
	f.store.InsertErr = errors.New("store unavailable")

	err := f.view.AddTask(context.Background(), "Buy milk", "", "low")
	assert.EqualError(t, err, "store unavailable")

	state := f.view.State()
	assert.Empty(t, state.Tasks)
	assert.Equal(t, "Buy milk", state.Draft.Title)
	assert.Equal(t, "store unavailable", state.Draft.Error)
}

func TestDeleteMissingTaskLeavesListUnchanged(t *testing.T) {
	f := newFixture(t, "a@b.com", domain.Task{ID: "1", Title: "mine", UserEmail: "a@b.com", Priority: domain.PriorityLow})
	f.mount(t)
	before := f.view.State()

	err := f.view.DeleteTask(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Equal(t, before, f.view.State())

	require.NoError(t, f.view.DeleteTask(context.Background(), "1"))
	assert.Empty(t, f.view.State().Tasks)
}

func TestToggleTwiceRoundTrips(t *testing.T) {
	f := newFixture(t, "a@b.com", domain.Task{ID: "1", Title: "mine", UserEmail: "a@b.com", Priority: domain.PriorityLow})
	f.mount(t)
	ctx := context.Background()

	original := f.view.State().Tasks[0].Completed
	require.NoError(t, f.view.ToggleTask(ctx, "1", original))
	assert.Equal(t, !original, f.view.State().Tasks[0].Completed)

	require.NoError(t, f.view.ToggleTask(ctx, "1", f.view.State().Tasks[0].Completed))
	assert.Equal(t, original, f.view.State().Tasks[0].Completed)

	require.Len(t, f.store.Updates, 2)
	assert.Nil(t, f.store.Updates[0].Patch.Title)
}

func TestFilterByPriorityIsLocal(t *testing.T) {
	f := newFixture(t, "a@b.com",
		domain.Task{ID: "1", Title: "a", UserEmail: "a@b.com", Priority: domain.PriorityHigh},
		domain.Task{ID: "2", Title: "b", UserEmail: "a@b.com", Priority: domain.PriorityLow},
		domain.Task{ID: "3", Title: "c", UserEmail: "a@b.com", Priority: domain.PriorityHigh, Completed: true},
	)
	f.mount(t)
	calls := f.store.Calls()

	f.view.FilterByPriority("high")
	visible := f.view.State().Visible()
	require.Len(t, visible, 2)
	for _, task := range visible {
		assert.Equal(t, domain.PriorityHigh, task.Priority)
	}
	assert.Equal(t, domain.Summary{Total: 3, Completed: 1, Pending: 2}, f.view.State().Summary())

	f.view.FilterByPriority("all")
	assert.Len(t, f.view.State().Visible(), 3)
	assert.Equal(t, calls, f.store.Calls())
}

func TestEditAndRename(t *testing.T) {
	f := newFixture(t, "a@b.com", domain.Task{ID: "1", Title: "old", UserEmail: "a@b.com", Priority: domain.PriorityLow})
	f.mount(t)
	ctx := context.Background()

	f.view.StartEdit("1", "old")
	assert.True(t, f.view.State().Editing("1"))

	require.NoError(t, f.view.UpdateTask(ctx, "1", "   "))
	assert.Empty(t, f.store.Updates)
	assert.True(t, f.view.State().Editing("1"))

	require.NoError(t, f.view.UpdateTask(ctx, "1", " new "))
	require.Len(t, f.store.Updates, 1)
	assert.Equal(t, "new", *f.store.Updates[0].Patch.Title)
	assert.Nil(t, f.store.Updates[0].Patch.Completed)

	state := f.view.State()
	assert.False(t, state.Editing("1"))
	assert.Equal(t, "new", state.Tasks[0].Title)

	f.view.StartEdit("1", "new")
	f.view.CancelEdit()
	assert.Empty(t, f.view.State().EditingID)
}

func TestUnmountDropsLaterSnapshots(t *testing.T) {
	f := newFixture(t, "a@b.com")
	f.mount(t)
	sub := f.store.Subscriptions()[0]

	f.view.Unmount()
	f.view.Unmount()
	assert.True(t, sub.Cancelled())
	renders := f.renders

	sub.Fn([]domain.Task{{ID: "x", Title: "late", UserEmail: "a@b.com", Priority: domain.PriorityLow}})
	assert.Empty(t, f.view.State().Tasks)
	assert.Equal(t, renders, f.renders)
}

func TestRemountOpensFreshSubscription(t *testing.T) {
	f := newFixture(t, "a@b.com")
	f.mount(t)
	f.view.Unmount()
	f.mount(t)

	subs := f.store.Subscriptions()
	require.Len(t, subs, 2)
	assert.True(t, subs[0].Cancelled())
	assert.False(t, subs[1].Cancelled())

	subs[0].Fn([]domain.Task{{ID: "x", Title: "stale", UserEmail: "a@b.com", Priority: domain.PriorityLow}})
	assert.Empty(t, f.view.State().Tasks)
}

func TestLogoutScenario(t *testing.T) {
	f := newFixture(t, "a@b.com", domain.Task{ID: "1", Title: "mine", UserEmail: "a@b.com", Priority: domain.PriorityLow})
	f.mount(t)
	sub := f.store.Subscriptions()[0]

	f.nav.OnGoTo = func(string) {
		_, ok := f.sessions.Value(domain.SessionKeyUserEmail)
		assert.False(t, ok, "session must be cleared before navigating")
		assert.True(t, sub.Cancelled())
	}
	require.NoError(t, f.view.Logout(context.Background()))

	assert.Equal(t, 1, f.identity.SignOuts)
	assert.Equal(t, []string{usecase.PathLanding}, f.nav.Paths())
	assert.False(t, f.view.Mounted())

	renders := f.renders
	assert.NotPanics(t, func() {
		sub.Fn([]domain.Task{{ID: "1", Title: "mine", UserEmail: "a@b.com", Priority: domain.PriorityLow}})
	})
	state := f.view.State()
	assert.Empty(t, state.Tasks)
	assert.Empty(t, state.Email)
	assert.Equal(t, renders, f.renders)

	f.nav.OnGoTo = nil
	f.mount(t)
	assert.Equal(t, []string{usecase.PathLanding, usecase.PathLanding}, f.nav.Paths())
	assert.Len(t, f.store.Subscriptions(), 1)
}

func TestMutationsWithoutSessionAreUnauthorized(t *testing.T) {
	f := newFixture(t, "")
	err := f.view.DeleteTask(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, f.store.Deletes)
}

func TestUnmountedViewActsForSessionOwner(t *testing.T) {
	f := newFixture(t, "a@b.com")
	require.NoError(t, f.view.AddTask(context.Background(), "Buy milk", "", "low"))
	require.Len(t, f.store.Inserts, 1)
	assert.Equal(t, "a@b.com", f.store.Inserts[0].UserEmail)
	assert.Empty(t, f.store.Subscriptions())
}

func TestSignUpThenMountSubscribesForNewEmail(t *testing.T) {
	sessions := testutil.NewSessions()
	nav := &testutil.Navigator{}
	identity := testutil.NewIdentity()
	store := testutil.NewTaskStore()

	landing.NewPage(identity, sessions, nav, nil).
		SubmitAuth(context.Background(), landing.State{}, landing.ModeSignUp, "a@b.com", "secret1")

	email, ok := sessions.Value(domain.SessionKeyUserEmail)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", email)
	require.Equal(t, usecase.PathTasks, nav.Last())

	view := taskview.NewView("v", taskview.Deps{Sessions: sessions, Tasks: store, Identity: identity, Nav: nav})
	require.NoError(t, view.Mount(context.Background()))
	subs := store.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, domain.Filter{Field: "userEmail", Op: "==", Value: "a@b.com"}, subs[0].Filter)
}

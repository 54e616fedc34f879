package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase/taskview"
)

func TestTaskPageRedirectsWithoutSession(t *testing.T) {
	e := newEnv(t)
	ctx := getRequest("http://example.com/tasks", "")
	e.pages.Page(ctx)

	assert.Equal(t, http.StatusSeeOther, ctx.Response.StatusCode())
	assert.Equal(t, "/", locationPath(ctx))
}

func TestTaskPageRendersShell(t *testing.T) {
	e := newEnv(t)
	sid := e.signedIn(t, "a@b.com")

	ctx := getRequest("http://example.com/tasks", sid)
	e.pages.Page(ctx)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, body, "a@b.com")
	assert.Contains(t, body, "data-view=")
	assert.Contains(t, body, "/tasks/stream")
}

func TestStreamWithoutSessionSendsRedirect(t *testing.T) {
	e := newEnv(t)
	ctx := getRequest("http://example.com/tasks/stream?view=v1", "")
	e.pages.Stream(ctx)

	body := string(ctx.Response.Body())
	assert.Contains(t, body, "event: redirect\ndata: /\n\n")
	assert.Equal(t, 0, e.store.Calls())
	assert.Equal(t, 0, e.views.Len())
}

func TestStreamPushesBoardUntilShutdown(t *testing.T) {
	e := newEnv(t, domain.Task{ID: "t1", Title: "Write report", UserEmail: "a@b.com", Priority: domain.PriorityHigh})
	sid := e.signedIn(t, "a@b.com")

	base, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	e.pages.cfg.BaseContext = base

	ctx := getRequest("http://example.com/tasks/stream?view=v1", sid)
	e.pages.Stream(ctx)

	assert.Equal(t, "text/event-stream", string(ctx.Response.Header.ContentType()))
	body := string(ctx.Response.Body())
	assert.Contains(t, body, "event: board\n")
	assert.Contains(t, body, "Write report")

	subs := e.store.Subscriptions()
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Cancelled())
	assert.Equal(t, 0, e.views.Len())
}

func TestActionUnknownIsNotFound(t *testing.T) {
	e := newEnv(t)
	sid := e.signedIn(t, "a@b.com")
	ctx := formRequest("http://example.com/tasks/views/v1/actions/explode", sid, url.Values{})
	ctx.SetUserValue("view", "v1")
	ctx.SetUserValue("action", "explode")
	e.pages.Action(ctx)

	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
}

func TestActionAddOnTransientViewUsesSessionEmail(t *testing.T) {
	e := newEnv(t)
	sid := e.signedIn(t, "a@b.com")
	ctx := formRequest("http://example.com/tasks/views/v1/actions/add", sid, url.Values{
		"title":    {"  Buy milk  "},
		"dueDate":  {"2024-05-01"},
		"priority": {"high"},
	})
	ctx.SetUserValue("view", "v1")
	ctx.SetUserValue("action", taskview.ActionAdd)
	e.pages.Action(ctx)

	assert.Equal(t, http.StatusSeeOther, ctx.Response.StatusCode())
	assert.Equal(t, "/tasks", locationPath(ctx))
	require.Len(t, e.store.Inserts, 1)
	got := e.store.Inserts[0]
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "a@b.com", got.UserEmail)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2024-05-01", *got.DueDate)
}

func TestActionFetchOnMountedView(t *testing.T) {
	e := newEnv(t)
	sid := e.signedIn(t, "a@b.com")

	v := taskview.NewView(viewKey(sid, "v1"), taskview.Deps{
		Sessions: e.sessions.Scope(getRequest("http://example.com/tasks", sid)),
		Tasks:    e.store,
		Identity: e.identity,
		Nav:      &redirectNavigator{},
	})
	require.NoError(t, v.Mount(context.Background()))
	e.views.Add(v)

	ctx := formRequest("http://example.com/tasks/views/v1/actions/add", sid, url.Values{"title": {"Ship it"}})
	ctx.Request.Header.Set("X-Requested-With", "fetch")
	ctx.SetUserValue("view", "v1")
	ctx.SetUserValue("action", taskview.ActionAdd)
	e.pages.Action(ctx)

	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())
	state := v.State()
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "Ship it", state.Tasks[0].Title)
}

func TestActionWithoutSession(t *testing.T) {
	e := newEnv(t)

	ctx := formRequest("http://example.com/tasks/views/v1/actions/delete", "", url.Values{"id": {"t1"}})
	ctx.SetUserValue("view", "v1")
	ctx.SetUserValue("action", taskview.ActionDelete)
	e.pages.Action(ctx)
	assert.Equal(t, http.StatusSeeOther, ctx.Response.StatusCode())
	assert.Equal(t, "/", locationPath(ctx))

	ctx = formRequest("http://example.com/tasks/views/v1/actions/delete", "", url.Values{"id": {"t1"}})
	ctx.Request.Header.Set("X-Requested-With", "fetch")
	ctx.SetUserValue("view", "v1")
	ctx.SetUserValue("action", taskview.ActionDelete)
	e.pages.Action(ctx)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Empty(t, e.store.Deletes)
}

func TestActionOnMissingTaskIsNoOp(t *testing.T) {
	e := newEnv(t)
	sid := e.signedIn(t, "a@b.com")

	ctx := formRequest("http://example.com/tasks/views/v1/actions/toggle", sid, url.Values{
		"id":        {"gone"},
		"completed": {"false"},
	})
	ctx.Request.Header.Set("X-Requested-With", "fetch")
	ctx.SetUserValue("view", "v1")
	ctx.SetUserValue("action", taskview.ActionToggle)
	e.pages.Action(ctx)

	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())
}

func TestLogoutClearsSessionAndUnmounts(t *testing.T) {
	e := newEnv(t)
	sid := e.signedIn(t, "a@b.com")

	v := taskview.NewView(viewKey(sid, "v1"), taskview.Deps{
		Sessions: e.sessions.Scope(getRequest("http://example.com/tasks", sid)),
		Tasks:    e.store,
		Identity: e.identity,
		Nav:      &redirectNavigator{},
	})
	require.NoError(t, v.Mount(context.Background()))
	e.views.Add(v)

	ctx := formRequest("http://example.com/logout", sid, url.Values{"view": {"v1"}})
	e.pages.Logout(ctx)

	assert.Equal(t, http.StatusSeeOther, ctx.Response.StatusCode())
	assert.Equal(t, "/", locationPath(ctx))
	assert.False(t, e.sessRepo.Has(sid))
	assert.False(t, v.Mounted())

	subs := e.store.Subscriptions()
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Cancelled())

	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(testCookie)
	require.True(t, ctx.Response.Header.Cookie(c))
	assert.Empty(t, string(c.Value()))
}

func TestLogoutExpiresOtherTabsOfSession(t *testing.T) {
	e := newEnv(t)
	sid := e.signedIn(t, "a@b.com")
	otherSid := e.signedIn(t, "c@d.com")

	mount := func(sid, viewID string) (*taskview.View, *streamNavigator) {
		nav := newStreamNavigator()
		v := taskview.NewView(viewKey(sid, viewID), taskview.Deps{
			Sessions: e.sessions.Scope(getRequest("http://example.com/tasks", sid)),
			Tasks:    e.store,
			Identity: e.identity,
			Nav:      nav,
		})
		require.NoError(t, v.Mount(context.Background()))
		e.views.Add(v)
		return v, nav
	}
	mount(sid, "tab-1")
	tab2, nav2 := mount(sid, "tab-2")
	stranger, _ := mount(otherSid, "tab-1")

	ctx := formRequest("http://example.com/logout", sid, url.Values{"view": {"tab-1"}})
	e.pages.Logout(ctx)
	require.Equal(t, http.StatusSeeOther, ctx.Response.StatusCode())

	assert.False(t, tab2.Mounted())
	select {
	case path := <-nav2.paths:
		assert.Equal(t, "/", path)
	default:
		t.Fatal("second tab was not redirected")
	}
	assert.True(t, stranger.Mounted())
	assert.Equal(t, 1, e.views.Len())
}

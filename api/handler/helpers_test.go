package handler

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskflow/api/view"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/realtime"
	"github.com/fastygo/taskflow/internal/testutil"
	"github.com/fastygo/taskflow/usecase"
	authUC "github.com/fastygo/taskflow/usecase/auth"
	taskUC "github.com/fastygo/taskflow/usecase/task"
	"github.com/fastygo/taskflow/usecase/taskview"
)

const testCookie = "taskflow_sid"

type env struct {
	users    *testutil.UserRepository
	sessRepo *testutil.SessionRepository
	sessions *Sessions
	identity *authUC.UseCase
	renderer *view.Renderer
	store    *testutil.TaskStore
	views    *taskview.Registry
	pages    *TaskPageHandler
	landing  *LandingHandler
}

func newEnv(t *testing.T, seed ...domain.Task) *env {
	t.Helper()
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	e := &env{
		users:    testutil.NewUserRepository(),
		sessRepo: testutil.NewSessionRepository(),
		renderer: renderer,
		store:    testutil.NewTaskStore(seed...),
		views:    taskview.NewRegistry(),
	}
	e.sessions = NewSessions(e.sessRepo, CookieConfig{Name: testCookie, TTL: time.Hour})
	e.identity = authUC.New(e.users, authUC.Config{
		MinPasswordLength: 6,
		BcryptCost:        bcrypt.MinCost,
		TokenSecret:       "secret",
		TokenIssuer:       "taskflow",
	}, nil)

	dispatcher := usecase.NewDispatcher()
	taskview.RegisterCommands(dispatcher)
	e.pages = NewTaskPageHandler(TaskPageConfig{
		Identity:   e.identity,
		Tasks:      e.store,
		Sessions:   e.sessions,
		Views:      e.views,
		Dispatcher: dispatcher,
		Renderer:   renderer,
		Heartbeat:  time.Hour,
	}, nil, nil)
	e.landing = NewLandingHandler(e.identity, e.sessions, renderer, nil, nil)
	return e
}

// signedIn stores a session for email and returns its id.
func (e *env) signedIn(t *testing.T, email string) string {
	t.Helper()
	sid := "sid-" + email
	require.NoError(t, e.sessRepo.Save(context.Background(), &domain.Session{
		ID:        sid,
		Values:    map[string]string{domain.SessionKeyUserEmail: email},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	return sid
}

func newTaskUseCase(t *testing.T) (*taskUC.UseCase, *testutil.TaskRepository) {
	t.Helper()
	repo := testutil.NewTaskRepository()
	hub := realtime.NewHub(taskUC.Loader(repo), realtime.Config{}, nil)
	t.Cleanup(hub.Close)
	return taskUC.New(repo, hub, taskUC.Options{NotifyOnWrite: true}, nil), repo
}

func getRequest(uri, sid string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI(uri)
	if sid != "" {
		ctx.Request.Header.SetCookie(testCookie, sid)
	}
	return ctx
}

func formRequest(uri, sid string, form url.Values) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.SetContentType("application/x-www-form-urlencoded")
	ctx.Request.SetBodyString(form.Encode())
	if sid != "" {
		ctx.Request.Header.SetCookie(testCookie, sid)
	}
	return ctx
}

func jsonRequest(method, uri, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.SetContentType("application/json")
	ctx.Request.SetBodyString(body)
	return ctx
}

// locationPath returns the path of the redirect target.
func locationPath(ctx *fasthttp.RequestCtx) string {
	u := fasthttp.AcquireURI()
	defer fasthttp.ReleaseURI(u)
	if err := u.Parse(nil, ctx.Response.Header.Peek("Location")); err != nil {
		return ""
	}
	return string(u.Path())
}

func responseCookie(ctx *fasthttp.RequestCtx, name string) (string, bool) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(name)
	if !ctx.Response.Header.Cookie(c) {
		return "", false
	}
	return string(c.Value()), true
}

package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskflow/internal/session"
	"github.com/fastygo/taskflow/repository"
)

// CookieConfig describes the browser session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Sessions binds requests to their server-side session through a cookie.
type Sessions struct {
	repo repository.SessionRepository
	cfg  CookieConfig
}

func NewSessions(repo repository.SessionRepository, cfg CookieConfig) *Sessions {
	if cfg.Name == "" {
		cfg.Name = "taskflow_sid"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Sessions{repo: repo, cfg: cfg}
}

// Scope returns the session store of the requesting browser. The first write
// without a cookie mints a session id and sets the cookie on the response.
func (s *Sessions) Scope(ctx *fasthttp.RequestCtx) *session.Scope {
	scope := session.NewScope(s.repo, s.ID(ctx), s.cfg.TTL)
	scope.IDFunc = func() string {
		id := uuid.NewString()
		s.setCookie(ctx, id, s.cfg.TTL)
		return id
	}
	return scope
}

// ID is the session cookie value, or "".
func (s *Sessions) ID(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Request.Header.Cookie(s.cfg.Name))
}

// Touch pushes the expiry of an active session forward.
func (s *Sessions) Touch(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.repo.Extend(ctx, id, s.cfg.TTL)
}

// Clear expires the cookie in the browser.
func (s *Sessions) Clear(ctx *fasthttp.RequestCtx) {
	s.setCookie(ctx, "", -1)
}

func (s *Sessions) setCookie(ctx *fasthttp.RequestCtx, value string, ttl time.Duration) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(s.cfg.Name)
	c.SetValue(value)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSecure(s.cfg.Secure)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	if ttl < 0 {
		c.SetExpire(fasthttp.CookieExpireDelete)
	} else {
		c.SetMaxAge(int(ttl.Seconds()))
	}
	ctx.Response.Header.SetCookie(c)
}

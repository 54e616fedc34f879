package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskflow/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeySessionID  Key = "session_id"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout    time.Duration
	cookieName string
}

// NewAdapter constructs a new Adapter using the provided timeout. cookieName
// names the session cookie copied into the context.
func NewAdapter(timeout time.Duration, cookieName string) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout:    timeout,
		cookieName: cookieName,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
	return a.enrich(stdCtx, ctx), cancel
}

// AttachTo enriches parent without adding a deadline. Used for long-lived streams.
func (a *Adapter) AttachTo(parent context.Context, ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithCancel(parent)
	return a.enrich(stdCtx, ctx), cancel
}

func (a *Adapter) enrich(stdCtx context.Context, ctx *fasthttp.RequestCtx) context.Context {
	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	if ctx == nil {
		return stdCtx
	}
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if a.cookieName != "" {
		if sid := string(ctx.Request.Header.Cookie(a.cookieName)); sid != "" {
			stdCtx = context.WithValue(stdCtx, KeySessionID, sid)
		}
	}
	return stdCtx
}

// SessionID returns the session cookie value captured by Attach.
func SessionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	sid, _ := ctx.Value(KeySessionID).(string)
	return sid
}

func getRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		return header
	}
	return uuid.NewString()
}

package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/view"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/usecase"
	"github.com/fastygo/taskflow/usecase/taskview"
)

// TaskPageConfig wires the task page collaborators.
type TaskPageConfig struct {
	Identity   usecase.IdentityClient
	Tasks      usecase.TaskStore
	Sessions   *Sessions
	Views      *taskview.Registry
	Dispatcher *usecase.Dispatcher
	Renderer   *view.Renderer
	// Heartbeat is the SSE keep-alive period.
	Heartbeat time.Duration
	// BaseContext bounds every event stream; cancelling it ends them all.
	BaseContext context.Context
}

type TaskPageHandler struct {
	baseHandler
	cfg TaskPageConfig
}

func NewTaskPageHandler(cfg TaskPageConfig, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskPageHandler {
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 15 * time.Second
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	return &TaskPageHandler{
		baseHandler: newBaseHandler(adapter, logger),
		cfg:         cfg,
	}
}

// Page renders the task page shell. The board fills in over the event stream.
func (h *TaskPageHandler) Page(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	email, ok, err := h.cfg.Sessions.Scope(ctx).Get(stdCtx, domain.SessionKeyUserEmail)
	if err != nil {
		h.log(stdCtx).Error("failed to read session", zap.Error(err))
		ctx.Error("internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		h.redirect(ctx, usecase.PathLanding)
		return
	}
	if err := h.cfg.Sessions.Touch(stdCtx, h.cfg.Sessions.ID(ctx)); err != nil {
		h.log(stdCtx).Warn("failed to extend session", zap.Error(err))
	}

	state := taskview.State{Email: email, Filter: domain.FilterAll}
	viewID := uuid.NewString()
	h.respondHTML(ctx, http.StatusOK, func(w io.Writer) error {
		return h.cfg.Renderer.Tasks(w, viewID, state)
	})
}

// Stream mounts a task view for the browser tab and pushes every state change
// as an SSE "board" event until the client goes away, the view navigates or
// the server shuts down.
func (h *TaskPageHandler) Stream(ctx *fasthttp.RequestCtx) {
	viewID := string(ctx.QueryArgs().Peek("view"))
	if viewID == "" {
		viewID = uuid.NewString()
	}
	sid := h.cfg.Sessions.ID(ctx)
	streamCtx, cancel := h.streamContext(h.cfg.BaseContext, ctx)
	logger := h.log(streamCtx).With(zap.String("view_id", viewID))

	nav := newStreamNavigator()
	v := taskview.NewView(viewKey(sid, viewID), taskview.Deps{
		Sessions: h.cfg.Sessions.Scope(ctx),
		Tasks:    h.cfg.Tasks,
		Identity: h.cfg.Identity,
		Nav:      nav,
		Logger:   logger,
	})
	states := make(chan taskview.State, 1)
	v.OnChange(func(s taskview.State) { pushLatest(states, s) })

	ctx.Response.Header.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.Response.Header.Set("X-Accel-Buffering", "no")

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer v.Unmount()

		if err := v.Mount(streamCtx); err != nil {
			logger.Error("failed to mount task view", zap.Error(err))
			return
		}
		if v.Mounted() {
			if prev, ok := h.cfg.Views.Get(v.ID()); ok {
				prev.Unmount()
			}
			h.cfg.Views.Add(v)
			defer h.cfg.Views.Remove(v)
		}

		ticker := time.NewTicker(h.cfg.Heartbeat)
		defer ticker.Stop()
		for {
			select {
			case path := <-nav.paths:
				_ = writeEvent(w, "redirect", path)
				return
			case s := <-states:
				board, err := h.cfg.Renderer.BoardString(viewID, s)
				if err != nil {
					logger.Error("failed to render board", zap.Error(err))
					continue
				}
				if err := writeEvent(w, "board", board); err != nil {
					logger.Debug("event stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					logger.Debug("event stream closed", zap.Error(err))
					return
				}
			case <-streamCtx.Done():
				return
			}
		}
	})
}

// Action runs a board command against the browser tab's view.
func (h *TaskPageHandler) Action(ctx *fasthttp.RequestCtx) {
	viewID, _ := ctx.UserValue("view").(string)
	name, _ := ctx.UserValue("action").(string)
	if !h.cfg.Dispatcher.Has(name) {
		ctx.Error("unknown action", http.StatusNotFound)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	logger := h.log(stdCtx).With(zap.String("action", name), zap.String("view_id", viewID))

	nav := &redirectNavigator{}
	v := h.resolveView(ctx, viewID, nav, logger)

	fields := make(map[string]string)
	ctx.PostArgs().VisitAll(func(key, value []byte) {
		fields[string(key)] = string(value)
	})

	_, err := h.cfg.Dispatcher.ExecuteCommand(stdCtx, name, taskview.Action{View: v, Fields: fields})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrTaskNotFound):
		logger.Debug("task already gone", zap.Error(err))
		err = nil
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		if isFetch(ctx) {
			ctx.SetStatusCode(http.StatusUnauthorized)
			return
		}
		h.redirect(ctx, usecase.PathLanding)
		return
	default:
		logger.Warn("task action failed", zap.Error(err))
	}

	if isFetch(ctx) {
		if err != nil {
			status, _ := mapError(err)
			ctx.Error(err.Error(), status)
			return
		}
		ctx.SetStatusCode(http.StatusNoContent)
		return
	}
	h.redirect(ctx, usecase.PathTasks)
}

// Logout signs the browser out and sends it to the landing page.
func (h *TaskPageHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	viewID := string(ctx.PostArgs().Peek("view"))
	logger := h.log(stdCtx).With(zap.String("view_id", viewID))
	nav := &redirectNavigator{}
	v := h.resolveView(ctx, viewID, nav, logger)

	if err := v.Logout(stdCtx); err != nil {
		logger.Error("logout failed", zap.Error(err))
		ctx.Error("internal error", http.StatusInternalServerError)
		return
	}
	if n := h.cfg.Views.UnmountSession(h.cfg.Sessions.ID(ctx)); n > 0 {
		logger.Debug("closed other views of the session", zap.Int("views", n))
	}
	h.cfg.Sessions.Clear(ctx)
	h.redirect(ctx, usecase.PathLanding)
}

// resolveView returns the streaming view of this browser tab, or a transient
// unmounted view bound to the same session.
func (h *TaskPageHandler) resolveView(ctx *fasthttp.RequestCtx, viewID string, nav usecase.Navigator, logger *zap.Logger) *taskview.View {
	sid := h.cfg.Sessions.ID(ctx)
	if sid != "" && viewID != "" {
		if v, ok := h.cfg.Views.Get(viewKey(sid, viewID)); ok {
			return v
		}
	}
	return taskview.NewView(viewKey(sid, viewID), taskview.Deps{
		Sessions: h.cfg.Sessions.Scope(ctx),
		Tasks:    h.cfg.Tasks,
		Identity: h.cfg.Identity,
		Nav:      nav,
		Logger:   logger,
	})
}

func viewKey(sid, viewID string) string {
	return sid + ":" + viewID
}

func isFetch(ctx *fasthttp.RequestCtx) bool {
	return string(ctx.Request.Header.Peek("X-Requested-With")) == "fetch"
}

// pushLatest replaces any undelivered state with s.
func pushLatest(ch chan taskview.State, s taskview.State) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// writeEvent writes one SSE event; multi-line data becomes several data lines.
func writeEvent(w *bufio.Writer, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	for _, line := range strings.Split(data, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", strings.TrimRight(line, "\r")); err != nil {
			return err
		}
	}
	if _, err := w.WriteString("\n"); err != nil {
		return err
	}
	return w.Flush()
}

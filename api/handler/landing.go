package handler

import (
	"io"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/view"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/usecase"
	"github.com/fastygo/taskflow/usecase/landing"
)

type LandingHandler struct {
	baseHandler
	identity usecase.IdentityClient
	sessions *Sessions
	renderer *view.Renderer
}

func NewLandingHandler(identity usecase.IdentityClient, sessions *Sessions, renderer *view.Renderer, adapter *httpcontext.Adapter, logger *zap.Logger) *LandingHandler {
	return &LandingHandler{
		baseHandler: newBaseHandler(adapter, logger),
		identity:    identity,
		sessions:    sessions,
		renderer:    renderer,
	}
}

// Page renders the landing page; the modal and theme live in the query string.
func (h *LandingHandler) Page(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	state := landing.FromQuery(string(args.Peek("modal")), string(args.Peek("theme")))
	h.respondHTML(ctx, http.StatusOK, func(w io.Writer) error {
		return h.renderer.Landing(w, state)
	})
}

// Submit handles the auth modal form.
func (h *LandingHandler) Submit(ctx *fasthttp.RequestCtx) {
	form := ctx.PostArgs()
	mode := landing.ParseMode(string(form.Peek("mode")))
	state := landing.State{
		Modal: mode,
		Theme: landing.ParseTheme(string(form.Peek("theme"))),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	nav := &redirectNavigator{}
	page := landing.NewPage(h.identity, h.sessions.Scope(ctx), nav, h.log(stdCtx))
	state = page.SubmitAuth(stdCtx, state, mode, string(form.Peek("email")), string(form.Peek("password")))

	if path := nav.Path(); path != "" {
		h.redirect(ctx, path)
		return
	}
	h.respondHTML(ctx, http.StatusUnprocessableEntity, func(w io.Writer) error {
		return h.renderer.Landing(w, state)
	})
}

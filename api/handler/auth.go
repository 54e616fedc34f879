package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/transport"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	authUC "github.com/fastygo/taskflow/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create an account and issue an API token
// @Tags auth
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) SignUp(ctx *fasthttp.RequestCtx) {
	req, ok := h.parseCredentials(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.CreateAccount(stdCtx, req.Email, req.Password); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondToken(ctx, http.StatusCreated, req.Email)
}

// @Summary Sign in and issue an API token
// @Tags auth
// @Router /api/v1/auth/signin [post]
func (h *AuthHandler) SignIn(ctx *fasthttp.RequestCtx) {
	req, ok := h.parseCredentials(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SignIn(stdCtx, req.Email, req.Password); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondToken(ctx, http.StatusOK, req.Email)
}

func (h *AuthHandler) respondToken(ctx *fasthttp.RequestCtx, status int, email string) {
	token, expires, err := h.uc.IssueToken(email)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, status, transport.TokenResponse{
		Token:     token,
		Email:     domain.NormalizeEmail(email),
		ExpiresAt: expires.UTC(),
	})
}

func (h *AuthHandler) parseCredentials(ctx *fasthttp.RequestCtx) (transport.CredentialsRequest, bool) {
	var req transport.CredentialsRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return req, false
	}
	return req, true
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/transport"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/middleware"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	taskUC "github.com/fastygo/taskflow/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	owner := h.userEmail(ctx)
	if owner == "" {
		return
	}
	filter := domain.ParsePriorityFilter(string(ctx.QueryArgs().Peek("priority")))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, owner)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.TaskList{
		Tasks:   filter.Apply(tasks),
		Summary: domain.Summarize(tasks),
	})
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	owner := h.userEmail(ctx)
	if owner == "" {
		return
	}

	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}
	due, err := domain.ParseDueDate(req.DueDate)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	task := &domain.Task{
		Title:     req.Title,
		UserEmail: owner,
		DueDate:   due,
		Priority:  priority,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := h.uc.Insert(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	task.ID = id
	h.respondSuccess(ctx, http.StatusCreated, task)
}

// @Summary Update task title or completion
// @Tags tasks
// @Router /api/v1/tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	owner := h.userEmail(ctx)
	if owner == "" {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskPatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	patch := domain.TaskPatch{Title: req.Title, Completed: req.Completed}
	if err := h.uc.Update(stdCtx, id, owner, patch); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"id": id})
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	owner := h.userEmail(ctx)
	if owner == "" {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id, owner); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"id": id})
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return "", false
	}
	return id, true
}

func (h *TaskHandler) userEmail(ctx *fasthttp.RequestCtx) string {
	return requireUserEmail(h.baseHandler, ctx)
}

func requireUserEmail(h baseHandler, ctx *fasthttp.RequestCtx) string {
	email := string(ctx.Request.Header.Peek(middleware.UserEmailHeader))
	if email == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user email", nil))
	}
	return email
}

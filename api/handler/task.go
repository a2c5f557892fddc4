package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/usecase/tracker"
)

type TaskHandler struct {
	baseHandler
	manager *tracker.Manager
}

func NewTaskHandler(manager *tracker.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.manager.Tasks())
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var (
		task domain.Task
		err  error
	)
	if peek(ctx) {
		task, err = h.manager.Task(id)
	} else {
		task, err = h.manager.ViewTask(id)
	}
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := req.Task(domain.UnassignedID, domain.DefaultStatus)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	created, err := h.manager.AddTask(stdCtx, task)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stored, err := h.manager.Task(id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	task, err := req.Task(id, stored.Status)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	updated, err := h.manager.UpdateTask(stdCtx, task)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	removed, err := h.manager.DeleteTask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, removed)
}

// @Summary Delete all tasks
// @Tags tasks
// @Router /api/v1/tasks [delete]
func (h *TaskHandler) DeleteTasks(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.manager.DeleteAllTasks(stdCtx); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}

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

type SubtaskHandler struct {
	baseHandler
	manager *tracker.Manager
}

func NewSubtaskHandler(manager *tracker.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *SubtaskHandler {
	return &SubtaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
	}
}

// @Summary List subtasks
// @Tags subtasks
// @Router /api/v1/subtasks [get]
func (h *SubtaskHandler) GetSubtasks(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.manager.Subtasks())
}

// @Summary Get subtask
// @Tags subtasks
// @Router /api/v1/subtasks/{id} [get]
func (h *SubtaskHandler) GetSubtask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var (
		sub domain.Subtask
		err error
	)
	if peek(ctx) {
		sub, err = h.manager.Subtask(id)
	} else {
		sub, err = h.manager.ViewSubtask(id)
	}
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, sub)
}

// @Summary Update subtask
// @Tags subtasks
// @Router /api/v1/subtasks/{id} [put]
func (h *SubtaskHandler) UpdateSubtask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.SubtaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stored, err := h.manager.Subtask(id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	sub, err := req.Subtask(id, stored.EpicID, stored.Status)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	updated, err := h.manager.UpdateSubtask(stdCtx, sub)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete subtask
// @Tags subtasks
// @Router /api/v1/subtasks/{id} [delete]
func (h *SubtaskHandler) DeleteSubtask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	removed, err := h.manager.DeleteSubtask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, removed)
}

// @Summary Delete all subtasks
// @Tags subtasks
// @Router /api/v1/subtasks [delete]
func (h *SubtaskHandler) DeleteSubtasks(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.manager.DeleteAllSubtasks(stdCtx); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}

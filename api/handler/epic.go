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

type EpicHandler struct {
	baseHandler
	manager *tracker.Manager
}

func NewEpicHandler(manager *tracker.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *EpicHandler {
	return &EpicHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
	}
}

// @Summary List epics
// @Tags epics
// @Router /api/v1/epics [get]
func (h *EpicHandler) GetEpics(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.manager.Epics())
}

// @Summary Get epic
// @Tags epics
// @Router /api/v1/epics/{id} [get]
func (h *EpicHandler) GetEpic(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var (
		epic domain.Epic
		err  error
	)
	if peek(ctx) {
		epic, err = h.manager.Epic(id)
	} else {
		epic, err = h.manager.ViewEpic(id)
	}
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, epic)
}

// @Summary Create epic
// @Tags epics
// @Router /api/v1/epics [post]
func (h *EpicHandler) CreateEpic(ctx *fasthttp.RequestCtx) {
	var req transport.EpicRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.manager.AddEpic(stdCtx, req.Epic(domain.UnassignedID))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update epic
// @Tags epics
// @Router /api/v1/epics/{id} [put]
func (h *EpicHandler) UpdateEpic(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.EpicRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.manager.UpdateEpic(stdCtx, req.Epic(id))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete epic and its subtasks
// @Tags epics
// @Router /api/v1/epics/{id} [delete]
func (h *EpicHandler) DeleteEpic(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	removed, err := h.manager.DeleteEpic(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, removed)
}

// @Summary Delete all epics and subtasks
// @Tags epics
// @Router /api/v1/epics [delete]
func (h *EpicHandler) DeleteEpics(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.manager.DeleteAllEpics(stdCtx); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Summary List subtasks of an epic
// @Tags epics
// @Router /api/v1/epics/{id}/subtasks [get]
func (h *EpicHandler) GetSubtasks(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	subtasks, err := h.manager.EpicSubtasks(id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, subtasks)
}

// @Summary Create subtask under an epic
// @Tags epics
// @Router /api/v1/epics/{id}/subtasks [post]
func (h *EpicHandler) CreateSubtask(ctx *fasthttp.RequestCtx) {
	epicID, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.SubtaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	// epic_id in the body is rejected by the store; the path names the owner.
	sub, err := req.Subtask(domain.UnassignedID, domain.UnassignedID, domain.DefaultStatus)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	created, err := h.manager.AddSubtask(stdCtx, sub, epicID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

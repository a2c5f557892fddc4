package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/usecase/tracker"
)

type HistoryHandler struct {
	baseHandler
	manager *tracker.Manager
}

func NewHistoryHandler(manager *tracker.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
	}
}

// @Summary View history, least recent first
// @Tags history
// @Router /api/v1/history [get]
func (h *HistoryHandler) GetHistory(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.NewEntityResponses(h.manager.History()))
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/pkg/httpcontext"
	appLogger "github.com/fastygo/tracker/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondNoContent(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusNoContent)
	ctx.ResetBody()
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, reqCtx context.Context, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		appLogger.WithRequestID(reqCtx, h.logger).Error("request failed",
			zap.String("path", string(ctx.Path())), zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(code, err.Error(), nil))
}

// decode parses the JSON body into dst, answering 400 on failure.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest,
			transport.NewError(string(domain.ErrCodeInvalid), domain.ErrInvalidPayload.Error(), nil))
		return false
	}
	return true
}

// pathID reads the {id} route parameter, answering 400 when it is not a positive integer.
func (h baseHandler) pathID(ctx *fasthttp.RequestCtx) (int, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= domain.UnassignedID {
		h.respondJSON(ctx, http.StatusBadRequest,
			transport.NewError(string(domain.ErrCodeInvalid), "invalid id "+strconv.Quote(raw), nil))
		return 0, false
	}
	return id, true
}

// peek reports whether a read should skip the view history.
func peek(ctx *fasthttp.RequestCtx) bool {
	return ctx.QueryArgs().GetBool("peek")
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeAlreadyExists):
		return http.StatusConflict, string(domain.ErrCodeAlreadyExists)
	case domain.IsDomainError(err, domain.ErrCodePersistence):
		return http.StatusInternalServerError, string(domain.ErrCodePersistence)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

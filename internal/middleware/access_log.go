package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/pkg/httpcontext"
)

// AccessLog logs one line per request, tagged with the request id that the
// handlers later echo back in X-Request-ID.
func AccessLog(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			reqID := httpcontext.RequestID(ctx)

			next(ctx)

			status := ctx.Response.StatusCode()
			fields := []zap.Field{
				zap.String("request_id", reqID),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
			}
			switch {
			case status >= fasthttp.StatusInternalServerError:
				logger.Error("request", fields...)
			case status >= fasthttp.StatusBadRequest:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		}
	}
}

// Recover turns a handler panic into a 500 instead of dropping the connection.
func Recover(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panic", zap.Any("panic", r), zap.ByteString("path", ctx.Path()))
					ctx.ResetBody()
					ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				}
			}()
			next(ctx)
		}
	}
}

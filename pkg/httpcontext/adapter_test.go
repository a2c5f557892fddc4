package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/tracker/pkg/logger"
)

func TestAdapter_AttachKeepsClientRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, "client-id")
	rc.Request.Header.SetUserAgent("curl/8")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	assert.Equal(t, "client-id", appLogger.RequestID(ctx))
	assert.Equal(t, "client-id", string(rc.Response.Header.Peek(HeaderRequestID)))
	assert.Equal(t, "curl/8", ctx.Value(KeyUserAgent))

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
}

func TestRequestID_GeneratedOnce(t *testing.T) {
	var rc fasthttp.RequestCtx

	first := RequestID(&rc)
	require.NotEmpty(t, first)
	assert.Equal(t, first, RequestID(&rc))
}

func TestNewAdapter_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, NewAdapter(0).timeout)
}

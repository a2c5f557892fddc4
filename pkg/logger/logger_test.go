package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSONWithServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Service: "tracker", Output: zapcore.AddSync(&buf)})
	require.NoError(t, err)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	WithRequestID(ctx, log).Debug("hello")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "tracker", entry["service"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "loud", Output: zapcore.AddSync(&buf)})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	assert.Equal(t, "abc", RequestID(ContextWithRequestID(context.Background(), "abc")))
	assert.Nil(t, WithRequestID(context.Background(), nil))
}

package logger

import (
	"bytes"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler_AddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&ContextHandler{log.NewJSONHandler(&buf, nil)})

	ctx := context.WithValue(context.Background(), TraceIDKey, "abc-123")
	l.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "abc-123", rec[TraceIDKey])
}

func TestTeeHandler_RemoteOnlyWithTraceID(t *testing.T) {
	var local, remote bytes.Buffer
	tee := &TeeHandler{handlers: []log.Handler{
		log.NewJSONHandler(&local, nil),
		&RemoteFilterHandler{next: log.NewJSONHandler(&remote, nil)},
	}}
	l := log.New(&ContextHandler{tee})

	l.Info("no trace")
	assert.NotEmpty(t, local.String())
	assert.Empty(t, remote.String())

	l.InfoContext(context.WithValue(context.Background(), TraceIDKey, "t1"), "traced")
	assert.Contains(t, remote.String(), `"trace_id":"t1"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, log.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, log.LevelInfo, ParseLevel("verbose"))
}

func TestWithTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "job-", "")
	assert.True(t, strings.HasPrefix(TraceID(ctx), "job-"))

	ctx = WithTraceID(context.Background(), "job-", "fixed")
	assert.Equal(t, "fixed", TraceID(ctx))
	assert.Equal(t, "", TraceID(context.Background()))
}

func TestRemoteFilterHandler_BoundTraceAttr(t *testing.T) {
	var remote bytes.Buffer
	l := log.New(&RemoteFilterHandler{next: log.NewJSONHandler(&remote, nil)})

	l.Info("plain")
	assert.Empty(t, remote.String())

	// 任务日志通过 With 绑定 trace_id，没有 ctx 也要上报
	l.With(TraceIDKey, "job-1").Info("bound")
	assert.Contains(t, remote.String(), `"trace_id":"job-1"`)
}

type failingHandler struct{ log.Handler }

func (failingHandler) Handle(context.Context, log.Record) error { return errors.New("conn closed") }

func TestTeeHandler_FailureDoesNotStopOthers(t *testing.T) {
	var local bytes.Buffer
	tee := &TeeHandler{handlers: []log.Handler{
		failingHandler{log.NewJSONHandler(&bytes.Buffer{}, nil)},
		log.NewJSONHandler(&local, nil),
	}}

	err := tee.Handle(context.Background(), log.NewRecord(time.Now(), log.LevelInfo, "msg", 0))
	assert.EqualError(t, err, "conn closed")
	assert.Contains(t, local.String(), `"msg":"msg"`)
}

func TestTeeHandler_EnabledIfAnyHandlerIs(t *testing.T) {
	tee := &TeeHandler{handlers: []log.Handler{
		log.NewJSONHandler(&bytes.Buffer{}, &log.HandlerOptions{Level: log.LevelError}),
		log.NewJSONHandler(&bytes.Buffer{}, &log.HandlerOptions{Level: log.LevelDebug}),
	}}
	assert.True(t, tee.Enabled(context.Background(), log.LevelDebug))
}

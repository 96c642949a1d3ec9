package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}

func TestNewRequestIDIsUUID(t *testing.T) {
	_, err := uuid.Parse(NewRequestID())
	assert.NoError(t, err)
}

func TestLoggerAddsRequestID(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := SetupWriter(&buf, slog.LevelInfo)

	logger.InfoContext(WithRequestID(context.Background(), "req-1"), "hello")
	logger.DebugContext(context.Background(), "hidden")

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "request_id=req-1")
	assert.NotContains(t, out, "hidden")
}

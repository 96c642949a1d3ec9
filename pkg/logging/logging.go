// Package logging configures the process-wide slog logger and carries the
// request ID through contexts so every record of a request can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request-id"

	// RequestIDHeader is the HTTP header carrying the request ID
	RequestIDHeader = "X-Request-ID"

	// RequestIDAttr is the log attribute name of the request ID
	RequestIDAttr = "request_id"
)

// Setup installs a text logger writing to stderr as the slog default
func Setup(level slog.Level) *slog.Logger {
	return SetupWriter(os.Stderr, level)
}

// SetupWriter installs a text logger writing to w as the slog default
func SetupWriter(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(&contextHandler{Handler: handler})
	slog.SetDefault(logger)
	return logger
}

// WithRequestID stores id in the context
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID stored in ctx, or ""
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// NewRequestID generates a UUID v4 request ID
func NewRequestID() string {
	return uuid.New().String()
}

// contextHandler adds the request ID of the record's context
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String(RequestIDAttr, id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}

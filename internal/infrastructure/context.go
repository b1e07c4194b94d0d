package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID creates a new trace ID (UUID v4)
func GenerateTraceID() string {
	return uuid.New().String()
}

// EnsureTraceID returns ctx carrying a trace ID. Commands without an HTTP
// request use it so their log lines still correlate.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// WithComponent tags logger with the component name. A nil logger falls back
// to the process logger.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}

package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	loggerKey      contextKey = "logger"
	operationIDKey contextKey = "operation_id"
)

// WithLogger returns a context with the logger attached.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context, or returns the default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithOperationID returns a context carrying an operation ID. Slot and
// sync operations stamp one so related log lines can be correlated.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey, id)
}

// OperationID extracts the operation ID from context.
func OperationID(ctx context.Context) string {
	if id, ok := ctx.Value(operationIDKey).(string); ok {
		return id
	}
	return ""
}

// L is a convenience function that returns a logger enriched with the
// context's operation ID.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := OperationID(ctx); id != "" {
		l = l.With(slog.String("operation_id", id))
	}
	return l.WithContext(ctx)
}

package http

import (
	"context"
	"log/slog"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// handlerLogger resolves the logger for a handler invocation, preferring the
// request-scoped one on ctx, and tags it with the handler and operation.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	tags := []any{"handler", handlerName}
	if operation != "" {
		tags = append(tags, "operation", operation)
	}
	tags = append(tags, attrs...)
	return logger.With(tags...)
}

package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/meeting-reservations/internal/logging"
	"github.com/example/meeting-reservations/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// startSpan opens a span named Service.Operation.
func startSpan(ctx context.Context, serviceName, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.StartSpan(ctx, serviceName+"."+operation, attrs...)
}

// endSpan closes span. Expected outcomes such as conflicts are tagged rather
// than recorded as span errors.
func endSpan(span trace.Span, err error) {
	kind := ErrorKind(err)
	if kind != "" {
		span.SetAttributes(attribute.String("error.kind", kind))
	}
	if kind == "unexpected" {
		telemetry.EndSpan(span, err)
		return
	}
	span.End()
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrAlreadyTerminal):
		return "already_terminal"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "invalid_input"
	}

	return "unexpected"
}

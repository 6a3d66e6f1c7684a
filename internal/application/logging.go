package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/dateparse"
	"github.com/example/lifetracker/internal/logging"
	"github.com/example/lifetracker/internal/parser"
	"github.com/example/lifetracker/internal/persistence"
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

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrNothingToUndo):
		return "nothing_to_undo"
	case errors.Is(err, ErrNotFound),
		errors.Is(err, calendar.ErrNotFound),
		errors.Is(err, persistence.ErrNotFound):
		return "not_found"
	case errors.Is(err, calendar.ErrIllegalTypeChange),
		errors.Is(err, calendar.ErrConversionLoss):
		return "illegal_type_change"
	case errors.Is(err, dateparse.ErrInvalidDateTime),
		errors.Is(err, dateparse.ErrInvalidDuration),
		errors.Is(err, parser.ErrEmptyInput),
		errors.Is(err, parser.ErrInvalidID),
		errors.Is(err, parser.ErrMissingArgument),
		errors.Is(err, parser.ErrNothingToEdit):
		return "parse"
	case calendar.IsInvalidArgument(err):
		return "validation"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}

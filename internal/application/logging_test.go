package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/dateparse"
	"github.com/example/lifetracker/internal/logging"
	"github.com/example/lifetracker/internal/parser"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewTextHandler(&base, nil))
	ctxLogger := slog.New(slog.NewTextHandler(&scoped, nil))
	ctx := logging.ContextWithLogger(context.Background(), ctxLogger)

	serviceLogger(ctx, baseLogger, "Tracker", "Execute", "entry_id", 4).Info("done")
	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %q", base.String())
	}
	for _, want := range []string{"service=Tracker", "operation=Execute", "entry_id=4"} {
		if !strings.Contains(scoped.String(), want) {
			t.Fatalf("expected %q in %q", want, scoped.String())
		}
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "storage", err: fmt.Errorf("%w: disk full", ErrStorage), want: "storage"},
		{name: "nothing to undo", err: ErrNothingToUndo, want: "nothing_to_undo"},
		{name: "not found", err: fmt.Errorf("entry 3: %w", calendar.ErrNotFound), want: "not_found"},
		{name: "type change", err: calendar.ErrIllegalTypeChange, want: "illegal_type_change"},
		{name: "conversion loss", err: calendar.ErrConversionLoss, want: "illegal_type_change"},
		{name: "bad date", err: dateparse.ErrInvalidDateTime, want: "parse"},
		{name: "bad id", err: parser.ErrInvalidID, want: "parse"},
		{name: "empty name", err: calendar.ErrEmptyName, want: "validation"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"window": "empty"}}, want: "validation"},
		{name: "other", err: errors.New("boom"), want: "unexpected"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

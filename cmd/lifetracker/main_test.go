package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/lifetracker/internal/application"
	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/config"
	"github.com/example/lifetracker/internal/recurrence"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{config.EnvConfigPath, config.EnvDBPath, config.EnvHistoryLimit} {
		t.Setenv(key, "")
	}
	t.Setenv(config.EnvTimezone, "UTC")
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvLogFormat, "text")
	return filepath.Join(t.TempDir(), "tracker.db")
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestRun_DoPersistsBetweenInvocations(t *testing.T) {
	db := setupEnv(t)

	out, errOut, code := runCLI(t, "", "--db", db, "do", "add", "read", "a", "book")
	if code != 0 {
		t.Fatalf("expected success, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, `"read a book" is added.`) || !strings.Contains(out, "(new)") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, errOut, code = runCLI(t, "", "--db", db, "do", "list")
	if code != 0 {
		t.Fatalf("expected success, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "read a book") || strings.Contains(out, "(new)") {
		t.Fatalf("expected stored task without highlight:\n%s", out)
	}

	out, _, code = runCLI(t, "", "--db", db, "history", "5")
	if code != 0 || !strings.Contains(out, "add") {
		t.Fatalf("expected add in history, got %d:\n%s", code, out)
	}
}

func TestRun_DoReportsRejectedCommands(t *testing.T) {
	db := setupEnv(t)

	out, errOut, code := runCLI(t, "", "--db", db, "do", "delete", "4")
	if code != 1 {
		t.Fatalf("expected failure exit code, got %d", code)
	}
	if !strings.Contains(errOut, "not found") || !strings.Contains(out, "not found") {
		t.Fatalf("expected not found in output and error:\n%s\n%s", out, errOut)
	}
}

func TestRun_REPL(t *testing.T) {
	db := setupEnv(t)

	input := "add buy milk\nhelp\nadd read mail\nundo\ndelete zero\nexit\nadd never reached\n"
	out, errOut, code := runCLI(t, input, "--db", db)
	if code != 0 {
		t.Fatalf("expected success, got %d: %s", code, errOut)
	}
	for _, want := range []string{`"buy milk" is added.`, "Commands:", `"read mail" is removed.`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, _, _ = runCLI(t, "", "--db", db, "do", "list")
	if strings.Contains(out, "read mail") || strings.Contains(out, "never reached") {
		t.Fatalf("expected undo and exit to be honoured:\n%s", out)
	}
}

func TestRun_Export(t *testing.T) {
	db := setupEnv(t)

	if _, errOut, code := runCLI(t, "", "--db", db, "do", "add", "read", "a", "book"); code != 0 {
		t.Fatalf("add failed: %s", errOut)
	}
	out, errOut, code := runCLI(t, "", "--db", db, "export")
	if code != 0 {
		t.Fatalf("expected success, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "SUMMARY:read a book") {
		t.Fatalf("unexpected export:\n%s", out)
	}
}

func TestRun_AgendaRejectsBadDuration(t *testing.T) {
	db := setupEnv(t)

	_, errOut, code := runCLI(t, "", "--db", db, "agenda", "soon")
	if code != 1 || !strings.Contains(errOut, "Error:") {
		t.Fatalf("expected failure, got %d: %s", code, errOut)
	}
}

func TestPrintResult(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	result := application.Result{
		Comment: "Displaying all entries.",
		Tasks: []application.TaskLine{
			{ID: 1, Name: "report", Due: now.Add(-2 * time.Hour), Overdue: true, Active: true},
			{ID: 2, Name: "water plants", Due: now.Add(time.Hour), Period: calendar.Days(1), Remaining: 3, Active: true, New: true},
		},
		Events: []application.EventLine{
			{ID: 3, Name: "dentist", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Active: true},
		},
		Warnings: []application.ConflictWarning{
			{EntryID: 3, WithID: 4, WithName: "gym", Start: now.Add(time.Hour), End: now.Add(3 * time.Hour)},
		},
		Agenda: []recurrence.Occurrence{
			{EntryID: 3, Name: "dentist", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)},
		},
	}

	var buf bytes.Buffer
	printResult(&buf, result, time.UTC, now)
	out := buf.String()
	for _, want := range []string{
		"Displaying all entries.",
		"overdue 2 hours ago",
		"every 1 day, 3 left",
		"open (new)",
		"Tue 02 Jan 2024 16:00",
		`! 3 overlaps 4 "gym"`,
		"Tue 02 Jan 2024 16:00 - 17:00",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/export"
	"github.com/example/lifetracker/internal/testfixtures"
)

func seededList(t *testing.T) *calendar.List {
	t.Helper()
	now := testfixtures.ReferenceTime()
	list := calendar.NewList(func() time.Time { return now })

	if _, err := list.AddFloating("read a book"); err != nil {
		t.Fatalf("AddFloating: %v", err)
	}
	if _, err := list.AddDeadline("report", now.Add(2*time.Hour)); err != nil {
		t.Fatalf("AddDeadline: %v", err)
	}
	if _, err := list.AddRecurringEvent("gym", now.Add(24*time.Hour), now.Add(25*time.Hour), calendar.Weeks(1), calendar.LimitCount(4)); err != nil {
		t.Fatalf("AddRecurringEvent: %v", err)
	}
	done, err := list.AddEvent("dentist", now.Add(-48*time.Hour), now.Add(-47*time.Hour))
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, _, err := list.Mark(done.ID()); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	return list
}

func parse(t *testing.T, body string) *ical.Calendar {
	t.Helper()
	cal, err := ical.ParseCalendar(strings.NewReader(body))
	if err != nil {
		t.Fatalf("exported calendar does not parse: %v\n%s", err, body)
	}
	return cal
}

func todos(cal *ical.Calendar) []*ical.VTodo {
	var out []*ical.VTodo
	for _, component := range cal.Components {
		if todo, ok := component.(*ical.VTodo); ok {
			out = append(out, todo)
		}
	}
	return out
}

func TestWrite(t *testing.T) {
	t.Parallel()

	list := seededList(t)
	opts := export.Options{Now: testfixtures.ReferenceTime(), Location: time.UTC}

	t.Run("writes active entries as events and todos", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := export.Write(&buf, list.All(), opts); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
		cal := parse(t, buf.String())

		events := cal.Events()
		if len(events) != 1 {
			t.Fatalf("expected one active event, got %d", len(events))
		}
		gym := events[0]
		if got := gym.GetProperty(ical.ComponentPropertySummary).Value; got != "gym" {
			t.Fatalf("unexpected summary %q", got)
		}
		start, err := gym.GetStartAt()
		if err != nil {
			t.Fatalf("GetStartAt: %v", err)
		}
		if !start.Equal(testfixtures.ReferenceTime().Add(24 * time.Hour)) {
			t.Fatalf("unexpected start %s", start)
		}
		rule := gym.GetProperty(ical.ComponentPropertyRrule)
		if rule == nil || !strings.Contains(rule.Value, "FREQ=WEEKLY") || !strings.Contains(rule.Value, "COUNT=4") {
			t.Fatalf("unexpected rrule %+v", rule)
		}
		if uid := gym.GetProperty(ical.ComponentPropertyUniqueId).Value; uid != export.UID(3) {
			t.Fatalf("unexpected uid %q", uid)
		}

		tasks := todos(cal)
		if len(tasks) != 2 {
			t.Fatalf("expected two todos, got %d", len(tasks))
		}
		due := ""
		for _, task := range tasks {
			if p := task.GetProperty(ical.ComponentPropertyDue); p != nil {
				due = p.Value
			}
		}
		if due != "20240102T170405Z" {
			t.Fatalf("unexpected due %q", due)
		}
	})

	t.Run("archived entries are opt-in", func(t *testing.T) {
		t.Parallel()

		withArchived := opts
		withArchived.IncludeArchived = true

		var buf bytes.Buffer
		if err := export.Write(&buf, list.All(), withArchived); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
		cal := parse(t, buf.String())
		if len(cal.Events()) != 2 {
			t.Fatalf("expected archived event to be exported, got %d events", len(cal.Events()))
		}
		if !strings.Contains(buf.String(), "STATUS:CANCELLED") {
			t.Fatalf("expected archived event to be cancelled:\n%s", buf.String())
		}
	})

	t.Run("nil writer is rejected", func(t *testing.T) {
		t.Parallel()
		if err := export.Write(nil, list.All(), opts); err == nil {
			t.Fatalf("expected error for nil writer")
		}
	})
}

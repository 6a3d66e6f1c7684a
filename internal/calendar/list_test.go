package calendar_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/testfixtures"
)

func newList(t *testing.T) (*calendar.List, *testfixtures.Clock) {
	t.Helper()
	clock := testfixtures.NewClock(time.Time{})
	return calendar.NewList(clock.NowFunc()), clock
}

func ids(entries []*calendar.Entry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID())
	}
	return out
}

func TestListScenario(t *testing.T) {
	t.Parallel()

	list, clock := newList(t)
	milk, err := list.AddFloating("buy milk")
	if err != nil {
		t.Fatalf("AddFloating: %v", err)
	}
	if milk.ID() != 1 {
		t.Fatalf("first id = %d, want 1", milk.ID())
	}

	report, err := list.AddDeadline("report", clock.Now().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("AddDeadline: %v", err)
	}
	if report.ID() != 2 {
		t.Fatalf("second id = %d, want 2", report.ID())
	}
	if got := ids(list.TaskList()); !slices.Equal(got, []int{2, 1}) {
		t.Fatalf("task list order = %v, want [2 1]", got)
	}

	if _, _, err := list.Mark(2); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if got := ids(list.ArchivedTasks()); !slices.Equal(got, []int{2}) {
		t.Fatalf("archived tasks = %v, want [2]", got)
	}
	if got := ids(list.ActiveTasks()); !slices.Equal(got, []int{1}) {
		t.Fatalf("active tasks = %v, want [1]", got)
	}

	removed, err := list.Delete(1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed.Equal(milk) {
		t.Fatalf("deleted entry differs from the added one")
	}
	if len(list.ActiveTasks()) != 0 {
		t.Fatalf("active task list should be empty")
	}
}

func TestListIDsAreMonotonic(t *testing.T) {
	t.Parallel()

	list, clock := newList(t)
	now := clock.Now()
	last := 0
	add := func(e *calendar.Entry, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if e.ID() <= last {
			t.Fatalf("id %d not greater than previous %d", e.ID(), last)
		}
		last = e.ID()
	}
	add(list.AddFloating("a"))
	add(list.AddDeadline("b", now))
	add(list.AddRecurringTask("c", now, calendar.Days(1), calendar.LimitCount(3)))
	add(list.AddEvent("d", now, now.Add(time.Hour)))
	add(list.AddRecurringEvent("e", now, now.Add(time.Hour), calendar.Weeks(1), calendar.NoLimit))

	if _, _, err := list.Mark(4); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	add(list.AddFloating("f"))
	if list.NextID() != last+1 {
		t.Fatalf("NextID = %d, want %d", list.NextID(), last+1)
	}
}

func TestListAddRejectsEmptyName(t *testing.T) {
	t.Parallel()

	list, _ := newList(t)
	if _, err := list.AddFloating(""); !errors.Is(err, calendar.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if list.Len() != 0 {
		t.Fatalf("failed add must not file anything")
	}
}

func TestListNotFound(t *testing.T) {
	t.Parallel()

	list, _ := newList(t)
	checks := map[string]error{}
	_, checks["get"] = list.Get(7)
	_, checks["delete"] = list.Delete(7)
	_, checks["update"] = list.Update(7, calendar.EntryUpdate{Name: "x"})
	_, _, checks["mark"] = list.Mark(7)
	_, checks["generic"] = list.ToGeneric(7, "")
	for op, err := range checks {
		if !errors.Is(err, calendar.ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", op, err)
		}
	}
}

func TestListUpdate(t *testing.T) {
	t.Parallel()

	t.Run("start on a task is an illegal type change", func(t *testing.T) {
		t.Parallel()
		list, clock := newList(t)
		task, _ := list.AddDeadline("report", clock.Now().Add(time.Hour))
		_, err := list.Update(task.ID(), calendar.EntryUpdate{Start: clock.Now()})
		if !errors.Is(err, calendar.ErrIllegalTypeChange) {
			t.Fatalf("expected ErrIllegalTypeChange, got %v", err)
		}
	})

	t.Run("floating with an end becomes a deadline", func(t *testing.T) {
		t.Parallel()
		list, clock := newList(t)
		task, _ := list.AddFloating("report")
		old, err := list.Update(task.ID(), calendar.EntryUpdate{End: clock.Now().Add(time.Hour)})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if old.Kind() != calendar.KindFloating {
			t.Fatalf("returned copy must predate the edit")
		}
		got, _ := list.Get(task.ID())
		if got.Kind() != calendar.KindDeadline {
			t.Fatalf("kind = %v, want deadline", got.Kind())
		}
	})

	t.Run("new end checked against existing start", func(t *testing.T) {
		t.Parallel()
		list, clock := newList(t)
		now := clock.Now()
		event, _ := list.AddEvent("lunch", now, now.Add(time.Hour))
		_, err := list.Update(event.ID(), calendar.EntryUpdate{Name: "brunch", End: now.Add(-time.Hour)})
		if !errors.Is(err, calendar.ErrStartNotBeforeEnd) {
			t.Fatalf("expected ErrStartNotBeforeEnd, got %v", err)
		}
		got, _ := list.Get(event.ID())
		if got.Name() != "lunch" || !got.AnchorEnd().Equal(now.Add(time.Hour)) {
			t.Fatalf("failed update must not partially apply")
		}
	})

	t.Run("both bounds replaced together", func(t *testing.T) {
		t.Parallel()
		list, clock := newList(t)
		now := clock.Now()
		event, _ := list.AddEvent("lunch", now, now.Add(time.Hour))
		start, end := now.Add(3*time.Hour), now.Add(4*time.Hour)
		if _, err := list.Update(event.ID(), calendar.EntryUpdate{Start: start, End: end}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		got, _ := list.Get(event.ID())
		if !got.AnchorStart().Equal(start) || !got.AnchorEnd().Equal(end) {
			t.Fatalf("span not applied: %v - %v", got.AnchorStart(), got.AnchorEnd())
		}
	})

	t.Run("period attaches recurrence", func(t *testing.T) {
		t.Parallel()
		list, clock := newList(t)
		task, _ := list.AddDeadline("rent", clock.Now())
		if _, err := list.Update(task.ID(), calendar.EntryUpdate{Period: calendar.Months(1)}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		got, _ := list.Get(task.ID())
		if got.Kind() != calendar.KindRecurringTask {
			t.Fatalf("kind = %v, want recurring task", got.Kind())
		}
	})
}

func TestListReplaceRestoresMemento(t *testing.T) {
	t.Parallel()

	list, clock := newList(t)
	task, _ := list.AddRecurringTask("laundry", clock.Now().AddDate(0, 0, -1), calendar.Weeks(1), calendar.LimitCount(5))
	before, _ := list.Get(task.ID())

	if _, _, err := list.Mark(task.ID()); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if _, err := list.Replace(before); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, _ := list.Get(task.ID())
	if got.Snapshot() != before.Snapshot() {
		t.Fatalf("replace did not restore every field: %+v vs %+v", got.Snapshot(), before.Snapshot())
	}
}

func TestListMarkRefiles(t *testing.T) {
	t.Parallel()

	list, clock := newList(t)
	now := clock.Now()
	event, _ := list.AddEvent("concert", now.Add(time.Hour), now.Add(3*time.Hour))
	recurring, _ := list.AddRecurringTask("bins", now.AddDate(0, 0, -2), calendar.Weeks(1), calendar.NoLimit)

	old, updated, err := list.Mark(event.ID())
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if !old.IsActive() || updated.IsActive() {
		t.Fatalf("mark should complete the event")
	}
	if got := ids(list.ArchivedEvents()); !slices.Equal(got, []int{event.ID()}) {
		t.Fatalf("archived events = %v", got)
	}

	if _, _, err := list.Mark(event.ID()); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if got := ids(list.ActiveEvents()); !slices.Equal(got, []int{event.ID()}) {
		t.Fatalf("unmark should move the event back, active events = %v", got)
	}

	if _, _, err := list.Mark(recurring.ID()); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if got := ids(list.ActiveTasks()); !slices.Equal(got, []int{recurring.ID()}) {
		t.Fatalf("recurring task must stay active, active tasks = %v", got)
	}
}

func TestListInsertKeepsFreeID(t *testing.T) {
	t.Parallel()

	list, _ := newList(t)
	list.AddFloating("a")
	b, _ := list.AddFloating("b")
	list.AddFloating("c")

	removed, _ := list.Delete(b.ID())
	restored, err := list.Insert(removed)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if restored.ID() != b.ID() {
		t.Fatalf("insert reassigned id %d, want %d", restored.ID(), b.ID())
	}

	dup, err := list.Insert(restored)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if dup.ID() != 4 {
		t.Fatalf("taken id should be replaced by the next id, got %d", dup.ID())
	}
}

func TestListSortingIsStableAcrossInsertionOrder(t *testing.T) {
	t.Parallel()

	clock := testfixtures.NewClock(time.Time{})
	now := clock.Now()
	build := func() []*calendar.Entry {
		var out []*calendar.Entry
		mk := func(e *calendar.Entry, err error) *calendar.Entry {
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			return e
		}
		a := mk(calendar.NewDeadline("a", now.AddDate(0, 0, 3)))
		b := mk(calendar.NewFloating("b"))
		c := mk(calendar.NewDeadline("c", now.AddDate(0, 0, 1)))
		d := mk(calendar.NewEvent("d", now.Add(2*time.Hour), now.Add(5*time.Hour)))
		e := mk(calendar.NewEvent("e", now.Add(time.Hour), now.Add(5*time.Hour)))
		f := mk(calendar.NewEvent("f", now.Add(time.Hour), now.Add(2*time.Hour)))
		out = append(out, a, b, c, d, e, f)
		return out
	}

	orders := [][]int{{0, 1, 2, 3, 4, 5}, {5, 4, 3, 2, 1, 0}, {2, 0, 4, 1, 5, 3}, {3, 5, 1, 0, 4, 2}}
	for _, order := range orders {
		list := calendar.NewList(clock.NowFunc())
		entries := build()
		for _, idx := range order {
			if _, err := list.Insert(entries[idx]); err != nil {
				t.Fatalf("Insert: %v", err)
			}
		}
		names := func(entries []*calendar.Entry) []string {
			out := make([]string, 0, len(entries))
			for _, e := range entries {
				out = append(out, e.Name())
			}
			return out
		}
		if got := names(list.TaskList()); !slices.Equal(got, []string{"c", "a", "b"}) {
			t.Fatalf("order %v: task list = %v", order, got)
		}
		if got := names(list.EventList()); !slices.Equal(got, []string{"f", "e", "d"}) {
			t.Fatalf("order %v: event list = %v", order, got)
		}

		for _, e := range list.All() {
			if e.Name() == "a" || e.Name() == "c" || e.Name() == "d" || e.Name() == "f" {
				if _, _, err := list.Mark(e.ID()); err != nil {
					t.Fatalf("Mark: %v", err)
				}
			}
		}
		if got := names(list.TaskList()); !slices.Equal(got, []string{"b", "a", "c"}) {
			t.Fatalf("order %v: task list after marks = %v", order, got)
		}
		if got := names(list.EventList()); !slices.Equal(got, []string{"e", "d", "f"}) {
			t.Fatalf("order %v: event list after marks = %v", order, got)
		}
	}
}

func TestListFind(t *testing.T) {
	t.Parallel()

	list, clock := newList(t)
	now := clock.Now()
	list.AddFloating("Buy Milk")
	list.AddDeadline("write report", now.Add(time.Hour))
	done, _ := list.AddFloating("milk the cow")
	list.AddEvent("Team lunch", now.Add(2*time.Hour), now.Add(3*time.Hour))
	list.Mark(done.ID())

	names := func(l *calendar.List) []string {
		var out []string
		for _, e := range l.All() {
			out = append(out, e.Name())
		}
		return out
	}

	if got := names(list.FindByName("MILK lunch")); !slices.Equal(got, []string{"Buy Milk", "Team lunch"}) {
		t.Fatalf("FindByName = %v", got)
	}
	if got := names(list.FindArchivedByName("milk")); !slices.Equal(got, []string{"milk the cow"}) {
		t.Fatalf("FindArchivedByName = %v", got)
	}
	if got := names(list.FindAllByName("milk")); !slices.Equal(got, []string{"Buy Milk", "milk the cow"}) {
		t.Fatalf("FindAllByName = %v", got)
	}
	if got := list.FindByName("   ").Len(); got != 3 {
		t.Fatalf("blank term should match every active entry, got %d", got)
	}

	found := list.FindByName("milk")
	found.AddFloating("scratch")
	if list.Len() != 4 {
		t.Fatalf("find must return an independent list")
	}
}

func TestListFindToday(t *testing.T) {
	t.Parallel()

	list, clock := newList(t)
	now := clock.Now()
	list.AddFloating("someday")
	list.AddDeadline("tonight", time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location()))
	list.AddDeadline("next week", now.AddDate(0, 0, 7))
	list.AddEvent("call", now.Add(time.Hour), now.Add(2*time.Hour))

	var got []string
	for _, e := range list.FindToday().All() {
		got = append(got, e.Name())
	}
	if !slices.Equal(got, []string{"tonight", "call"}) {
		t.Fatalf("FindToday = %v", got)
	}
}

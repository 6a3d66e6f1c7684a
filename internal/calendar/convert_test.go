package calendar_test

import (
	"errors"
	"testing"
	"time"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/testfixtures"
)

func TestConversions(t *testing.T) {
	t.Parallel()

	now := testfixtures.ReferenceTime()
	start, end := now.Add(time.Hour), now.Add(2*time.Hour)

	sources := map[calendar.Kind]func() *calendar.Entry{
		calendar.KindFloating: func() *calendar.Entry {
			e, _ := calendar.NewFloating("src")
			return e
		},
		calendar.KindDeadline: func() *calendar.Entry {
			e, _ := calendar.NewDeadline("src", end)
			return e
		},
		calendar.KindRecurringTask: func() *calendar.Entry {
			e, _ := calendar.NewRecurringTask("src", end, calendar.Days(1), calendar.LimitCount(3))
			return e
		},
		calendar.KindEvent: func() *calendar.Entry {
			e, _ := calendar.NewEvent("src", start, end)
			return e
		},
		calendar.KindRecurringEvent: func() *calendar.Entry {
			e, _ := calendar.NewRecurringEvent("src", start, end, calendar.Weeks(1), calendar.NoLimit)
			return e
		},
	}

	cases := []struct {
		name    string
		from    calendar.Kind
		convert func(*calendar.Entry) (calendar.Pair, error)
		want    calendar.Kind
		wantErr error
	}{
		{
			name:    "recurring event to generic",
			from:    calendar.KindRecurringEvent,
			convert: func(e *calendar.Entry) (calendar.Pair, error) { return calendar.ToGeneric(e, "") },
			want:    calendar.KindFloating,
		},
		{
			name:    "floating to deadline needs a deadline",
			from:    calendar.KindFloating,
			convert: func(e *calendar.Entry) (calendar.Pair, error) { return calendar.ToDeadline(e, now, "", time.Time{}, false) },
			wantErr: calendar.ErrEmptyDeadline,
		},
		{
			name:    "floating to deadline",
			from:    calendar.KindFloating,
			convert: func(e *calendar.Entry) (calendar.Pair, error) { return calendar.ToDeadline(e, now, "", end, false) },
			want:    calendar.KindDeadline,
		},
		{
			name:    "event to deadline without force",
			from:    calendar.KindEvent,
			convert: func(e *calendar.Entry) (calendar.Pair, error) { return calendar.ToDeadline(e, now, "", time.Time{}, false) },
			wantErr: calendar.ErrConversionLoss,
		},
		{
			name:    "event to deadline forced",
			from:    calendar.KindEvent,
			convert: func(e *calendar.Entry) (calendar.Pair, error) { return calendar.ToDeadline(e, now, "", time.Time{}, true) },
			want:    calendar.KindDeadline,
		},
		{
			name:    "recurring task to deadline without force",
			from:    calendar.KindRecurringTask,
			convert: func(e *calendar.Entry) (calendar.Pair, error) { return calendar.ToDeadline(e, now, "", time.Time{}, false) },
			wantErr: calendar.ErrConversionLoss,
		},
		{
			name:    "recurring task to event needs a start",
			from:    calendar.KindRecurringTask,
			convert: func(e *calendar.Entry) (calendar.Pair, error) { return calendar.ToEvent(e, now, "", time.Time{}, time.Time{}, true) },
			wantErr: calendar.ErrEmptyStart,
		},
		{
			name:    "deadline to event with start",
			from:    calendar.KindDeadline,
			convert: func(e *calendar.Entry) (calendar.Pair, error) { return calendar.ToEvent(e, now, "", start, time.Time{}, false) },
			want:    calendar.KindEvent,
		},
		{
			name: "deadline to recurring task needs a period",
			from: calendar.KindDeadline,
			convert: func(e *calendar.Entry) (calendar.Pair, error) {
				return calendar.ToRecurringTask(e, calendar.RecurringOptions{})
			},
			wantErr: calendar.ErrEmptyPeriod,
		},
		{
			name: "floating to recurring task needs a deadline",
			from: calendar.KindFloating,
			convert: func(e *calendar.Entry) (calendar.Pair, error) {
				return calendar.ToRecurringTask(e, calendar.RecurringOptions{Period: calendar.Days(1)})
			},
			wantErr: calendar.ErrEmptyDeadline,
		},
		{
			name: "event to recurring task unforced keeps the start",
			from: calendar.KindEvent,
			convert: func(e *calendar.Entry) (calendar.Pair, error) {
				return calendar.ToRecurringTask(e, calendar.RecurringOptions{Period: calendar.Days(1)})
			},
			want: calendar.KindRecurringEvent,
		},
		{
			name: "event to recurring task forced drops the start",
			from: calendar.KindEvent,
			convert: func(e *calendar.Entry) (calendar.Pair, error) {
				return calendar.ToRecurringTask(e, calendar.RecurringOptions{Period: calendar.Days(1), Force: true})
			},
			want: calendar.KindRecurringTask,
		},
		{
			name: "recurring task to recurring event",
			from: calendar.KindRecurringTask,
			convert: func(e *calendar.Entry) (calendar.Pair, error) {
				return calendar.ToRecurringEvent(e, calendar.RecurringOptions{Start: now})
			},
			want: calendar.KindRecurringEvent,
		},
		{
			name: "count limit must be positive",
			from: calendar.KindDeadline,
			convert: func(e *calendar.Entry) (calendar.Pair, error) {
				return calendar.ToRecurringTask(e, calendar.RecurringOptions{Period: calendar.Days(1), LimitMode: calendar.LimitModeCount})
			},
			wantErr: calendar.ErrInvalidLimit,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			src := sources[tc.from]()
			before := src.Snapshot()
			pair, err := tc.convert(src)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			if pair.New.Kind() != tc.want {
				t.Fatalf("kind = %v, want %v", pair.New.Kind(), tc.want)
			}
			if pair.Old.Snapshot() != before || src.Snapshot() != before {
				t.Fatalf("conversion must leave the source untouched")
			}
			if pair.New.ID() != src.ID() || pair.New.IsActive() != src.IsActive() {
				t.Fatalf("id and active flag must carry over")
			}
		})
	}
}

func TestRecurringConversionLimits(t *testing.T) {
	t.Parallel()

	now := testfixtures.ReferenceTime()
	src, err := calendar.NewRecurringTask("pills", now, calendar.Days(1), calendar.LimitCount(4))
	if err != nil {
		t.Fatalf("NewRecurringTask: %v", err)
	}

	pair, err := calendar.ToRecurringTask(src, calendar.RecurringOptions{Period: calendar.Days(2)})
	if err != nil {
		t.Fatalf("ToRecurringTask: %v", err)
	}
	if !pair.New.Limit().IsZero() {
		t.Fatalf("unlimited mode must drop the prior limit, got %+v", pair.New.Limit())
	}

	pair, err = calendar.ToRecurringTask(src, calendar.RecurringOptions{KeepLimit: true})
	if err != nil {
		t.Fatalf("ToRecurringTask: %v", err)
	}
	if n, ok := pair.New.OccurrenceLimit(); !ok || n != 4 {
		t.Fatalf("KeepLimit lost the count: %d %v", n, ok)
	}

	until := now.AddDate(0, 1, 0)
	pair, err = calendar.ToRecurringTask(src, calendar.RecurringOptions{LimitMode: calendar.LimitModeDate, Until: until})
	if err != nil {
		t.Fatalf("ToRecurringTask: %v", err)
	}
	date, ok := pair.New.LimitDate()
	if !ok || date.Day() != until.Day() {
		t.Fatalf("limit date = %v %v, want %v", date, ok, until)
	}
	if _, ok := pair.New.OccurrenceLimit(); ok {
		t.Fatalf("date mode must not keep a count")
	}
}

func TestOneOffConversionsKeepCurrentOccurrence(t *testing.T) {
	t.Parallel()

	now := testfixtures.ReferenceTime()
	anchor := now.AddDate(0, 0, -21)
	src, err := calendar.NewRecurringEvent("standup", anchor.Add(2*time.Hour), anchor.Add(3*time.Hour), calendar.Weeks(1), calendar.NoLimit)
	if err != nil {
		t.Fatalf("NewRecurringEvent: %v", err)
	}

	event, err := calendar.ToEvent(src, now, "", time.Time{}, time.Time{}, true)
	if err != nil {
		t.Fatalf("ToEvent: %v", err)
	}
	if !event.New.AnchorStart().Equal(now.Add(2*time.Hour)) || !event.New.AnchorEnd().Equal(now.Add(3*time.Hour)) {
		t.Fatalf("event window = %v - %v", event.New.AnchorStart(), event.New.AnchorEnd())
	}
	if !event.Old.AnchorStart().Equal(anchor.Add(2 * time.Hour)) {
		t.Fatalf("old entry must keep its anchor")
	}

	deadline, err := calendar.ToDeadline(src, now, "", time.Time{}, true)
	if err != nil {
		t.Fatalf("ToDeadline: %v", err)
	}
	if !deadline.New.AnchorEnd().Equal(now.Add(3 * time.Hour)) {
		t.Fatalf("deadline = %v", deadline.New.AnchorEnd())
	}
}

func TestListConversionRefiles(t *testing.T) {
	t.Parallel()

	list, clock := newList(t)
	now := clock.Now()
	task, _ := list.AddDeadline("dentist", now.Add(2*time.Hour))

	old, err := list.ToEvent(task.ID(), "", now.Add(time.Hour), time.Time{}, false)
	if err != nil {
		t.Fatalf("ToEvent: %v", err)
	}
	if old.Kind() != calendar.KindDeadline {
		t.Fatalf("old entry kind = %v", old.Kind())
	}
	if len(list.ActiveTasks()) != 0 || len(list.ActiveEvents()) != 1 {
		t.Fatalf("converted entry should live in the event partition")
	}
	got, _ := list.Get(task.ID())
	if got.ID() != task.ID() {
		t.Fatalf("conversion changed the id")
	}
}

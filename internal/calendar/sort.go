package calendar

import (
	"slices"
	"time"
)

// TaskList returns active tasks by ascending deadline, floating tasks last,
// followed by archived tasks by descending deadline.
func (l *List) TaskList() []*Entry {
	active := byID(l.activeTasks)
	slices.SortStableFunc(active, func(a, b *Entry) int {
		switch {
		case !a.HasEnd() && !b.HasEnd():
			return 0
		case !a.HasEnd():
			return 1
		case !b.HasEnd():
			return -1
		}
		return a.end.Compare(b.end)
	})
	archived := byID(l.archivedTasks)
	slices.SortStableFunc(archived, func(a, b *Entry) int {
		return b.end.Compare(a.end)
	})
	return append(active, archived...)
}

// EventList returns active events by ascending (end, start) of their current
// occurrence, followed by archived events in descending order of the same key.
func (l *List) EventList() []*Entry {
	now := l.now()
	active := byID(l.activeEvents)
	slices.SortStableFunc(active, func(a, b *Entry) int {
		return compareWindow(a, b, now)
	})
	archived := byID(l.archivedEvents)
	slices.SortStableFunc(archived, func(a, b *Entry) int {
		return compareWindow(b, a, now)
	})
	return append(active, archived...)
}

func compareWindow(a, b *Entry, now time.Time) int {
	if c := a.End(now).Compare(b.End(now)); c != 0 {
		return c
	}
	return a.Start(now).Compare(b.Start(now))
}

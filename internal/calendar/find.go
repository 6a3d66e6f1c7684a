package calendar

import "strings"

// FindByName returns a list holding the active entries whose name contains
// any whitespace-separated token of term, ignoring case. A blank term
// matches everything.
func (l *List) FindByName(term string) *List {
	return l.filter(matcher(term), true, false)
}

// FindArchivedByName is FindByName over the archived partitions.
func (l *List) FindArchivedByName(term string) *List {
	return l.filter(matcher(term), false, true)
}

// FindAllByName is FindByName over active and archived partitions.
func (l *List) FindAllByName(term string) *List {
	return l.filter(matcher(term), true, true)
}

// FindToday returns a list of the active entries due or happening on the
// list's current day.
func (l *List) FindToday() *List {
	now := l.now()
	return l.filter(func(e *Entry) bool { return e.IsToday(now) }, true, false)
}

func (l *List) filter(keep func(*Entry) bool, active, archived bool) *List {
	out := NewList(l.now)
	copyMatching := func(part map[int]*Entry) {
		for _, e := range part {
			if keep(e) {
				out.file(e.Copy())
			}
		}
	}
	if active {
		copyMatching(l.activeTasks)
		copyMatching(l.activeEvents)
	}
	if archived {
		copyMatching(l.archivedTasks)
		copyMatching(l.archivedEvents)
	}
	return out
}

func matcher(term string) func(*Entry) bool {
	tokens := strings.Fields(strings.ToLower(term))
	return func(e *Entry) bool {
		if len(tokens) == 0 {
			return true
		}
		name := strings.ToLower(e.name)
		for _, tok := range tokens {
			if strings.Contains(name, tok) {
				return true
			}
		}
		return false
	}
}

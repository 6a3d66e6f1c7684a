package application

import (
	"time"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/parser"
	"github.com/example/lifetracker/internal/recurrence"
)

// TaskLine is one task as shown to the user. Remaining is the occurrence
// limit and Until the limit date; both are zero when the task has none.
type TaskLine struct {
	ID        int
	Name      string
	Kind      calendar.Kind
	Due       time.Time
	Period    calendar.Period
	Remaining int
	Until     time.Time
	Overdue   bool
	Active    bool
	New       bool
}

// EventLine is one event as shown to the user.
type EventLine struct {
	ID        int
	Name      string
	Kind      calendar.Kind
	Start     time.Time
	End       time.Time
	Period    calendar.Period
	Remaining int
	Until     time.Time
	Over      bool
	Ongoing   bool
	Active    bool
	New       bool
}

// ConflictWarning describes an active event that overlaps the one just
// added or edited.
type ConflictWarning struct {
	EntryID  int
	WithID   int
	WithName string
	Type     string
	Start    time.Time
	End      time.Time
}

// HistoryItem is one journal record.
type HistoryItem struct {
	ID         string
	Verb       string
	Comment    string
	Undo       bool
	EntryID    int
	RecordedAt time.Time
}

// Result is what the tracker hands back to the boundary after an intent.
type Result struct {
	Action   parser.Action
	Comment  string
	Tasks    []TaskLine
	Events   []EventLine
	Warnings []ConflictWarning
	Agenda   []recurrence.Occurrence
	History  []HistoryItem
}

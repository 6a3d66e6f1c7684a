// Package command wraps each user intent as an execute/undo pair over a
// calendar.List. Undo restores a memento captured during Execute instead of
// replaying an inverse operation.
package command

import (
	"errors"

	"github.com/example/lifetracker/internal/calendar"
)

// ErrNotExecuted is returned when Undo is called on a command that has not
// been executed, or has already been undone.
var ErrNotExecuted = errors.New("command: undo before execute")

// Command is one reversible user intent.
type Command interface {
	// Execute applies the command and returns the list to display.
	Execute(list *calendar.List) (*calendar.List, error)
	// Undo reverts the last Execute and returns the list to display.
	Undo(list *calendar.List) (*calendar.List, error)
	// Comment describes the outcome of the last Execute or Undo.
	Comment() string
}

// Highlighter is implemented by commands that create entries worth flagging
// as new in the next rendering.
type Highlighter interface {
	Highlighted() []int
}

// Targeted is implemented by commands that act on one existing entry.
type Targeted interface {
	Target() int
}

// View is implemented by commands that only change which entries are shown.
// Their results are filtered copies and never replace the canonical list.
type View interface {
	IsView() bool
}

// snapshot is the memento shared by commands that edit a single entry.
type snapshot struct {
	old      *calendar.Entry
	executed bool
}

func (s *snapshot) capture(old *calendar.Entry) {
	s.old = old
	s.executed = true
}

func (s *snapshot) restore(list *calendar.List) error {
	if !s.executed {
		return ErrNotExecuted
	}
	if _, err := list.Replace(s.old); err != nil {
		return err
	}
	s.executed = false
	return nil
}

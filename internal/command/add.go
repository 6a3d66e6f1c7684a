package command

import (
	"fmt"
	"time"

	"github.com/example/lifetracker/internal/calendar"
)

// Add creates an entry. The populated fields pick the kind: a start makes
// an event, an end alone a deadline, neither a floating task. A period
// makes either recurring.
type Add struct {
	Name   string
	Start  time.Time
	End    time.Time
	Period calendar.Period
	Limit  calendar.Limit

	added   *calendar.Entry
	comment string
}

// Execute files the new entry.
func (c *Add) Execute(list *calendar.List) (*calendar.List, error) {
	var (
		e   *calendar.Entry
		err error
	)
	recurring := !c.Period.IsZero()
	switch {
	case !c.Start.IsZero() && recurring:
		e, err = list.AddRecurringEvent(c.Name, c.Start, c.End, c.Period, c.Limit)
	case !c.Start.IsZero():
		e, err = list.AddEvent(c.Name, c.Start, c.End)
	case recurring:
		e, err = list.AddRecurringTask(c.Name, c.End, c.Period, c.Limit)
	case !c.End.IsZero():
		e, err = list.AddDeadline(c.Name, c.End)
	default:
		e, err = list.AddFloating(c.Name)
	}
	if err != nil {
		return nil, err
	}
	c.added = e
	c.comment = fmt.Sprintf("%q is added.", e.Name())
	return list, nil
}

// Undo deletes the entry created by Execute.
func (c *Add) Undo(list *calendar.List) (*calendar.List, error) {
	if c.added == nil {
		return nil, ErrNotExecuted
	}
	if _, err := list.Delete(c.added.ID()); err != nil {
		return nil, err
	}
	c.comment = fmt.Sprintf("%q is removed.", c.added.Name())
	c.added = nil
	return list, nil
}

// Comment implements Command.
func (c *Add) Comment() string { return c.comment }

// Highlighted returns the id of the entry just added.
func (c *Add) Highlighted() []int {
	if c.added == nil {
		return nil
	}
	return []int{c.added.ID()}
}

// Added returns a copy of the created entry, or nil before Execute.
func (c *Add) Added() *calendar.Entry { return c.added.Copy() }

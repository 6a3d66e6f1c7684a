package command

import (
	"fmt"

	"github.com/example/lifetracker/internal/calendar"
)

// Mark completes or reopens an entry. Recurring tasks advance to their next
// deadline instead. Undo restores the entry as it was before the mark.
type Mark struct {
	ID int

	memo    snapshot
	comment string
}

// Execute implements Command.
func (c *Mark) Execute(list *calendar.List) (*calendar.List, error) {
	old, updated, err := list.Mark(c.ID)
	if err != nil {
		return nil, err
	}
	c.memo.capture(old)
	switch {
	case old.Kind() == calendar.KindRecurringTask && updated.IsActive():
		c.comment = fmt.Sprintf("\"%d\" marked, next due %s.", c.ID, updated.AnchorEnd().Format("02 Jan 2006 15:04"))
	case updated.IsActive():
		c.comment = fmt.Sprintf("\"%d\" unmarked.", c.ID)
	default:
		c.comment = fmt.Sprintf("\"%d\" marked.", c.ID)
	}
	return list, nil
}

// Undo implements Command.
func (c *Mark) Undo(list *calendar.List) (*calendar.List, error) {
	if err := c.memo.restore(list); err != nil {
		return nil, err
	}
	c.comment = fmt.Sprintf("Mark on \"%d\" has been undone.", c.ID)
	return list, nil
}

// Comment implements Command.
func (c *Mark) Comment() string { return c.comment }

// Target implements Targeted.
func (c *Mark) Target() int { return c.ID }

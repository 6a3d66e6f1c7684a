package command

import (
	"fmt"

	"github.com/example/lifetracker/internal/calendar"
)

// Delete removes an entry. Undo files it again under its original id.
type Delete struct {
	ID int

	deleted *calendar.Entry
	comment string
}

// Execute removes the entry.
func (c *Delete) Execute(list *calendar.List) (*calendar.List, error) {
	e, err := list.Delete(c.ID)
	if err != nil {
		return nil, err
	}
	c.deleted = e
	c.comment = fmt.Sprintf("%d is deleted.", c.ID)
	return list, nil
}

// Undo re-inserts the deleted entry.
func (c *Delete) Undo(list *calendar.List) (*calendar.List, error) {
	if c.deleted == nil {
		return nil, ErrNotExecuted
	}
	if _, err := list.Insert(c.deleted); err != nil {
		return nil, err
	}
	c.comment = fmt.Sprintf("%q re-added.", c.deleted.Name())
	c.deleted = nil
	return list, nil
}

// Comment implements Command.
func (c *Delete) Comment() string { return c.comment }

// Target implements Targeted.
func (c *Delete) Target() int { return c.ID }

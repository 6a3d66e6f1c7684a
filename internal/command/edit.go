package command

import (
	"fmt"
	"time"

	"github.com/example/lifetracker/internal/calendar"
)

// Edit changes fields of an entry without changing its kind.
type Edit struct {
	ID     int
	Update calendar.EntryUpdate

	memo    snapshot
	comment string
}

// Execute applies the update.
func (c *Edit) Execute(list *calendar.List) (*calendar.List, error) {
	old, err := list.Update(c.ID, c.Update)
	if err != nil {
		return nil, err
	}
	c.memo.capture(old)
	c.comment = editedComment(c.ID)
	return list, nil
}

// Undo implements Command.
func (c *Edit) Undo(list *calendar.List) (*calendar.List, error) {
	return undoEdit(list, c.ID, &c.memo, &c.comment)
}

// Comment implements Command.
func (c *Edit) Comment() string { return c.comment }

// Target implements Targeted.
func (c *Edit) Target() int { return c.ID }

// EditGeneric turns an entry into a floating task.
type EditGeneric struct {
	ID   int
	Name string

	memo    snapshot
	comment string
}

// Execute implements Command.
func (c *EditGeneric) Execute(list *calendar.List) (*calendar.List, error) {
	return executeConvert(list, c.ID, &c.memo, &c.comment, func() (*calendar.Entry, error) {
		return list.ToGeneric(c.ID, c.Name)
	})
}

// Undo implements Command.
func (c *EditGeneric) Undo(list *calendar.List) (*calendar.List, error) {
	return undoEdit(list, c.ID, &c.memo, &c.comment)
}

// Comment implements Command.
func (c *EditGeneric) Comment() string { return c.comment }

// Target implements Targeted.
func (c *EditGeneric) Target() int { return c.ID }

// EditDeadline turns an entry into a one-off deadline task.
type EditDeadline struct {
	ID    int
	Name  string
	End   time.Time
	Force bool

	memo    snapshot
	comment string
}

// Execute implements Command.
func (c *EditDeadline) Execute(list *calendar.List) (*calendar.List, error) {
	return executeConvert(list, c.ID, &c.memo, &c.comment, func() (*calendar.Entry, error) {
		return list.ToDeadline(c.ID, c.Name, c.End, c.Force)
	})
}

// Undo implements Command.
func (c *EditDeadline) Undo(list *calendar.List) (*calendar.List, error) {
	return undoEdit(list, c.ID, &c.memo, &c.comment)
}

// Comment implements Command.
func (c *EditDeadline) Comment() string { return c.comment }

// Target implements Targeted.
func (c *EditDeadline) Target() int { return c.ID }

// EditEvent turns an entry into a one-off event.
type EditEvent struct {
	ID    int
	Name  string
	Start time.Time
	End   time.Time
	Force bool

	memo    snapshot
	comment string
}

// Execute implements Command.
func (c *EditEvent) Execute(list *calendar.List) (*calendar.List, error) {
	return executeConvert(list, c.ID, &c.memo, &c.comment, func() (*calendar.Entry, error) {
		return list.ToEvent(c.ID, c.Name, c.Start, c.End, c.Force)
	})
}

// Undo implements Command.
func (c *EditEvent) Undo(list *calendar.List) (*calendar.List, error) {
	return undoEdit(list, c.ID, &c.memo, &c.comment)
}

// Comment implements Command.
func (c *EditEvent) Comment() string { return c.comment }

// Target implements Targeted.
func (c *EditEvent) Target() int { return c.ID }

// EditRecurringTask turns an entry into a recurring task, or a recurring
// event when the source has a start and Force is unset.
type EditRecurringTask struct {
	ID      int
	Options calendar.RecurringOptions

	memo    snapshot
	comment string
}

// Execute implements Command.
func (c *EditRecurringTask) Execute(list *calendar.List) (*calendar.List, error) {
	return executeConvert(list, c.ID, &c.memo, &c.comment, func() (*calendar.Entry, error) {
		return list.ToRecurringTask(c.ID, c.Options)
	})
}

// Undo restores the entry as it was, kind included.
func (c *EditRecurringTask) Undo(list *calendar.List) (*calendar.List, error) {
	return undoEdit(list, c.ID, &c.memo, &c.comment)
}

// Comment implements Command.
func (c *EditRecurringTask) Comment() string { return c.comment }

// Target implements Targeted.
func (c *EditRecurringTask) Target() int { return c.ID }

// EditRecurringEvent turns an entry into a recurring event.
type EditRecurringEvent struct {
	ID      int
	Options calendar.RecurringOptions

	memo    snapshot
	comment string
}

// Execute implements Command.
func (c *EditRecurringEvent) Execute(list *calendar.List) (*calendar.List, error) {
	return executeConvert(list, c.ID, &c.memo, &c.comment, func() (*calendar.Entry, error) {
		return list.ToRecurringEvent(c.ID, c.Options)
	})
}

// Undo restores the entry as it was, kind included.
func (c *EditRecurringEvent) Undo(list *calendar.List) (*calendar.List, error) {
	return undoEdit(list, c.ID, &c.memo, &c.comment)
}

// Comment implements Command.
func (c *EditRecurringEvent) Comment() string { return c.comment }

// Target implements Targeted.
func (c *EditRecurringEvent) Target() int { return c.ID }

// EditStop ends the recurrence of an entry. Events keep the window of their
// current or next occurrence and tasks keep their current deadline. Floating
// tasks stay floating.
type EditStop struct {
	ID   int
	Name string

	memo    snapshot
	comment string
}

// Execute implements Command.
func (c *EditStop) Execute(list *calendar.List) (*calendar.List, error) {
	e, err := list.Get(c.ID)
	if err != nil {
		return nil, err
	}
	return executeConvert(list, c.ID, &c.memo, &c.comment, func() (*calendar.Entry, error) {
		switch {
		case e.HasStart():
			return list.ToEvent(c.ID, c.Name, time.Time{}, time.Time{}, true)
		case e.HasEnd():
			return list.ToDeadline(c.ID, c.Name, time.Time{}, true)
		default:
			return list.ToGeneric(c.ID, c.Name)
		}
	})
}

// Undo implements Command.
func (c *EditStop) Undo(list *calendar.List) (*calendar.List, error) {
	return undoEdit(list, c.ID, &c.memo, &c.comment)
}

// Comment implements Command.
func (c *EditStop) Comment() string { return c.comment }

// Target implements Targeted.
func (c *EditStop) Target() int { return c.ID }

func executeConvert(list *calendar.List, id int, memo *snapshot, comment *string, convert func() (*calendar.Entry, error)) (*calendar.List, error) {
	old, err := convert()
	if err != nil {
		return nil, err
	}
	memo.capture(old)
	*comment = editedComment(id)
	return list, nil
}

func undoEdit(list *calendar.List, id int, memo *snapshot, comment *string) (*calendar.List, error) {
	if err := memo.restore(list); err != nil {
		return nil, err
	}
	*comment = fmt.Sprintf("Changes to \"%d\" have been undone.", id)
	return list, nil
}

func editedComment(id int) string {
	return fmt.Sprintf("\"%d\" is edited.", id)
}

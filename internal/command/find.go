package command

import (
	"fmt"
	"strings"

	"github.com/example/lifetracker/internal/calendar"
)

// Scope selects which partitions a Find searches.
type Scope int

const (
	// ScopeActive searches active entries.
	ScopeActive Scope = iota
	// ScopeArchived searches archived entries.
	ScopeArchived
	// ScopeAll searches everything.
	ScopeAll
)

// Find narrows the displayed list to entries matching Term.
type Find struct {
	Term  string
	Scope Scope

	prior   *calendar.List
	comment string
}

// Execute returns the filtered list and remembers the one it came from.
func (c *Find) Execute(list *calendar.List) (*calendar.List, error) {
	c.prior = list
	var found *calendar.List
	switch c.Scope {
	case ScopeArchived:
		found = list.FindArchivedByName(c.Term)
	case ScopeAll:
		found = list.FindAllByName(c.Term)
	default:
		found = list.FindByName(c.Term)
	}
	if strings.TrimSpace(c.Term) == "" {
		c.comment = "Displaying all entries."
	} else {
		c.comment = fmt.Sprintf("Displaying entries with : %q.", c.Term)
	}
	return found, nil
}

// Undo returns the list that was displayed before the search.
func (c *Find) Undo(*calendar.List) (*calendar.List, error) {
	return undoView(&c.prior, &c.comment)
}

// Comment implements Command.
func (c *Find) Comment() string { return c.comment }

// IsView implements View.
func (c *Find) IsView() bool { return true }

// Today narrows the displayed list to entries due or happening today.
type Today struct {
	prior   *calendar.List
	comment string
}

// Execute implements Command.
func (c *Today) Execute(list *calendar.List) (*calendar.List, error) {
	c.prior = list
	c.comment = "Displaying today's entries."
	return list.FindToday(), nil
}

// Undo implements Command.
func (c *Today) Undo(*calendar.List) (*calendar.List, error) {
	return undoView(&c.prior, &c.comment)
}

// Comment implements Command.
func (c *Today) Comment() string { return c.comment }

// IsView implements View.
func (c *Today) IsView() bool { return true }

func undoView(prior **calendar.List, comment *string) (*calendar.List, error) {
	if *prior == nil {
		return nil, ErrNotExecuted
	}
	restored := *prior
	*prior = nil
	*comment = "Displaying previous entries."
	return restored, nil
}

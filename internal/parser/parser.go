// Package parser turns a line typed at the prompt into an Intent: either a
// command.Command for the tracker to execute, or a control action such as
// undo or export.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/command"
	"github.com/example/lifetracker/internal/dateparse"
)

var (
	// ErrEmptyInput is returned for a blank line.
	ErrEmptyInput = errors.New("parser: empty command")
	// ErrInvalidID is returned when an id argument is not a positive number.
	ErrInvalidID = errors.New("parser: entry id must be a positive number")
	// ErrMissingArgument is returned when a verb needs an argument that was not given.
	ErrMissingArgument = errors.New("parser: missing argument")
	// ErrNothingToEdit is returned for an edit without any change.
	ErrNothingToEdit = errors.New("parser: nothing to edit")
)

// Action says what the boundary should do with an Intent.
type Action int

const (
	// ActionExecute runs Intent.Command.
	ActionExecute Action = iota
	// ActionUndo reverts the most recent command.
	ActionUndo
	// ActionList shows the whole list, clearing any search.
	ActionList
	// ActionAgenda lists upcoming occurrences within Intent.Window.
	ActionAgenda
	// ActionExport writes an iCalendar file to Intent.Arg.
	ActionExport
	// ActionHistory shows the latest Intent.Count journal records.
	ActionHistory
	// ActionHelp shows usage.
	ActionHelp
	// ActionExit ends the session.
	ActionExit
)

// DefaultHistoryCount is the number of journal records shown by a bare history.
const DefaultHistoryCount = 10

// Intent is a parsed line.
type Intent struct {
	Action  Action
	Verb    string
	Command command.Command
	Arg     string
	Window  calendar.Period
	Count   int
}

// Resolver looks up the current state of an entry. Edit uses it to choose
// between an in-place update and a conversion.
type Resolver interface {
	Get(id int) (*calendar.Entry, error)
}

var verbs = map[string]string{
	"add":     "add",
	"delete":  "delete",
	"del":     "delete",
	"rm":      "delete",
	"edit":    "edit",
	"mark":    "mark",
	"done":    "mark",
	"find":    "find",
	"search":  "find",
	"findold": "findold",
	"findall": "findall",
	"list":    "list",
	"today":   "today",
	"agenda":  "agenda",
	"undo":    "undo",
	"export":  "export",
	"history": "history",
	"help":    "help",
	"exit":    "exit",
	"quit":    "exit",
}

var reOccurrences = regexp.MustCompile(`^(\d+)(?:\s+times?)?$`)

func isEmpty(s string) bool { return s == "" }

func isCount(s string) bool {
	m := reOccurrences.FindStringSubmatch(s)
	return m != nil && atoi(m[1]) > 0
}

var addKeywords = map[string]Validator{
	"by":    dateparse.IsDateTime,
	"from":  dateparse.IsDateTime,
	"to":    dateparse.IsDateTime,
	"every": dateparse.IsDuration,
	"for":   isCount,
	"until": dateparse.IsDateTime,
}

var editKeywords = map[string]Validator{
	"by":      dateparse.IsDateTime,
	"from":    dateparse.IsDateTime,
	"to":      dateparse.IsDateTime,
	"every":   dateparse.IsDuration,
	"for":     isCount,
	"until":   dateparse.IsDateTime,
	"stop":    isEmpty,
	"forever": isEmpty,
	"force":   isEmpty,
}

// Parse turns one input line into an Intent. Unknown first words are read
// as the name of a new entry.
func Parse(input string, now time.Time, lookup Resolver) (Intent, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Intent{}, ErrEmptyInput
	}
	first, rest, _ := strings.Cut(input, " ")
	verb, ok := verbs[strings.ToLower(first)]
	if !ok {
		verb, rest = "add", input
	}
	rest = strings.TrimSpace(rest)

	intent := Intent{Action: ActionExecute, Verb: verb}
	var err error
	switch verb {
	case "add":
		intent.Command, err = parseAdd(rest, now)
	case "edit":
		intent.Command, err = parseEdit(rest, now, lookup)
	case "delete":
		var id int
		id, err = parseID(rest)
		intent.Command = &command.Delete{ID: id}
	case "mark":
		var id int
		id, err = parseID(rest)
		intent.Command = &command.Mark{ID: id}
	case "find":
		intent.Command = &command.Find{Term: rest, Scope: command.ScopeActive}
	case "findold":
		intent.Command = &command.Find{Term: rest, Scope: command.ScopeArchived}
	case "findall":
		intent.Command = &command.Find{Term: rest, Scope: command.ScopeAll}
	case "today":
		intent.Command = &command.Today{}
	case "list":
		intent.Action = ActionList
	case "undo":
		intent.Action = ActionUndo
	case "agenda":
		intent.Action = ActionAgenda
		intent.Window = calendar.Weeks(1)
		if rest != "" {
			intent.Window, err = dateparse.ParseDuration(rest)
		}
	case "export":
		intent.Action = ActionExport
		intent.Arg = rest
		if rest == "" {
			err = fmt.Errorf("%w: export needs a file path", ErrMissingArgument)
		}
	case "history":
		intent.Action = ActionHistory
		intent.Count = DefaultHistoryCount
		if rest != "" {
			n, convErr := strconv.Atoi(rest)
			if convErr != nil || n <= 0 {
				err = fmt.Errorf("%w: history needs a positive count", ErrMissingArgument)
			}
			intent.Count = n
		}
	case "help":
		intent.Action = ActionHelp
	case "exit":
		intent.Action = ActionExit
	}
	if err != nil {
		return Intent{}, err
	}
	return intent, nil
}

func parseAdd(body string, now time.Time) (command.Command, error) {
	name, args := ParseBody(body, addKeywords)
	start, end, err := parseSpan(args, now)
	if err != nil {
		return nil, err
	}
	period, limit, err := parseRecurrence(args, now)
	if err != nil {
		return nil, err
	}
	if period.IsZero() && !limit.IsZero() {
		return nil, calendar.ErrEmptyPeriod
	}
	return &command.Add{Name: name, Start: start, End: end, Period: period, Limit: limit}, nil
}

func parseEdit(body string, now time.Time, lookup Resolver) (command.Command, error) {
	idText, rest, _ := strings.Cut(body, " ")
	id, err := parseID(idText)
	if err != nil {
		return nil, err
	}
	name, args := ParseBody(rest, editKeywords)
	if _, ok := args["stop"]; ok {
		return &command.EditStop{ID: id, Name: name}, nil
	}
	start, end, err := parseSpan(args, now)
	if err != nil {
		return nil, err
	}
	period, limit, err := parseRecurrence(args, now)
	if err != nil {
		return nil, err
	}
	_, force := args["force"]
	_, forever := args["forever"]
	_, hasFrom := args["from"]
	_, hasBy := args["by"]

	if !period.IsZero() || !limit.IsZero() || forever {
		opts := calendar.RecurringOptions{
			Name:      name,
			Start:     start,
			End:       end,
			Period:    period,
			KeepLimit: !forever,
			Force:     force,
		}
		switch {
		case limit.Count > 0:
			opts.LimitMode, opts.Count = calendar.LimitModeCount, limit.Count
		case !limit.Until.IsZero():
			opts.LimitMode, opts.Until = calendar.LimitModeDate, limit.Until
		}
		if hasFrom {
			return &command.EditRecurringEvent{ID: id, Options: opts}, nil
		}
		return &command.EditRecurringTask{ID: id, Options: opts}, nil
	}

	hasStart := false
	if lookup != nil {
		if e, err := lookup.Get(id); err == nil {
			hasStart = e.HasStart()
		}
	}
	switch {
	case hasFrom && hasStart:
		return &command.Edit{ID: id, Update: calendar.EntryUpdate{Name: name, Start: start, End: end}}, nil
	case hasFrom:
		return &command.EditEvent{ID: id, Name: name, Start: start, End: end, Force: force}, nil
	case hasBy && hasStart:
		return &command.EditDeadline{ID: id, Name: name, End: end, Force: force}, nil
	case !end.IsZero() || name != "":
		return &command.Edit{ID: id, Update: calendar.EntryUpdate{Name: name, End: end}}, nil
	default:
		return nil, fmt.Errorf("%w: entry %d", ErrNothingToEdit, id)
	}
}

// parseSpan resolves from/to/by into a start and end. A "to" without
// "from" is read as a deadline.
func parseSpan(args map[string]string, now time.Time) (time.Time, time.Time, error) {
	if from, ok := args["from"]; ok {
		return dateparse.ParseDouble(from, args["to"], now)
	}
	for _, kw := range []string{"by", "to"} {
		if text, ok := args[kw]; ok {
			end, err := dateparse.ParseSingle(text, now)
			return time.Time{}, end, err
		}
	}
	return time.Time{}, time.Time{}, nil
}

func parseRecurrence(args map[string]string, now time.Time) (calendar.Period, calendar.Limit, error) {
	var (
		period calendar.Period
		limit  calendar.Limit
	)
	if every, ok := args["every"]; ok {
		p, err := dateparse.ParseDuration(every)
		if err != nil {
			return period, limit, err
		}
		period = p
	}
	count, hasCount := args["for"]
	until, hasUntil := args["until"]
	switch {
	case hasCount && hasUntil:
		return period, limit, calendar.ErrConflictingLimits
	case hasCount:
		limit = calendar.LimitCount(atoi(reOccurrences.FindStringSubmatch(count)[1]))
	case hasUntil:
		date, err := dateparse.ParseSingle(until, now)
		if err != nil {
			return period, limit, err
		}
		limit = calendar.LimitUntil(date)
	}
	return period, limit, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

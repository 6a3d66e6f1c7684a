package recurrence

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/lifetracker/internal/calendar"
)

// DefaultMaxOccurrences caps how many occurrences one entry may expand to
// in a single call.
const DefaultMaxOccurrences = 5000

// maxSteps bounds manual period stepping when no rule can be built.
const maxSteps = 1_000_000

// Occurrence is one concrete instance of an entry. Tasks occupy a single
// instant, so Start equals End.
type Occurrence struct {
	EntryID int
	Name    string
	Kind    calendar.Kind
	Index   int
	Start   time.Time
	End     time.Time
}

// Engine expands calendar entries into occurrences.
type Engine struct {
	location       *time.Location
	maxOccurrences int
}

// NewEngine constructs an Engine that normalizes results to the provided location.
// If loc is nil, time.Local is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{location: loc, maxOccurrences: DefaultMaxOccurrences}
}

// WithMaxOccurrences returns a copy of the engine with a different cap.
func (e *Engine) WithMaxOccurrences(n int) *Engine {
	clone := *e
	if n > 0 {
		clone.maxOccurrences = n
	}
	return &clone
}

// ErrInvalidWindow indicates the requested range is empty.
var ErrInvalidWindow = errors.New("recurrence: window end must be after start")

// ErrUnsupportedPeriod indicates the period cannot be written as a single RRULE.
var ErrUnsupportedPeriod = errors.New("recurrence: period cannot be expressed as a rule")

// Between returns the occurrences of entry that touch [from, to), ordered by
// start. Events are included when any part of them overlaps the range; task
// deadlines when they fall inside it. Floating tasks never occur.
func (e *Engine) Between(entry *calendar.Entry, from, to time.Time) ([]Occurrence, error) {
	if !to.After(from) {
		return nil, ErrInvalidWindow
	}
	from = from.In(e.location)
	to = to.In(e.location)

	switch entry.Kind() {
	case calendar.KindFloating:
		return nil, nil
	case calendar.KindDeadline:
		due := entry.AnchorEnd().In(e.location)
		if due.Before(from) || !due.Before(to) {
			return nil, nil
		}
		return []Occurrence{e.occurrence(entry, 0, due, due)}, nil
	case calendar.KindEvent:
		start := entry.AnchorStart().In(e.location)
		end := entry.AnchorEnd().In(e.location)
		if !start.Before(to) || !end.After(from) {
			return nil, nil
		}
		return []Occurrence{e.occurrence(entry, 0, start, end)}, nil
	}

	return e.expand(entry, from, to)
}

// expand handles recurring tasks and recurring events.
func (e *Engine) expand(entry *calendar.Entry, from, to time.Time) ([]Occurrence, error) {
	anchor := entry.AnchorEnd().In(e.location)
	var duration time.Duration
	if entry.Kind() == calendar.KindRecurringEvent {
		anchor = entry.AnchorStart().In(e.location)
		duration = entry.AnchorEnd().Sub(entry.AnchorStart())
	}

	// An event starting before from may still overlap the window.
	lower := from
	if duration > 0 {
		lower = from.Add(-duration).Add(time.Nanosecond)
	}

	var starts []time.Time
	option, exact, err := buildOption(entry.Period(), anchor, entry.Limit(), e.location)
	if err == nil && exact {
		rule, ruleErr := rrule.NewRRule(option)
		if ruleErr != nil {
			return nil, ruleErr
		}
		starts = rule.Between(lower, to, true)
	} else {
		starts = e.step(entry.Period(), anchor, entry.Limit(), lower, to)
	}

	occurrences := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		if !start.Before(to) || start.Before(lower) {
			continue
		}
		if len(occurrences) >= e.maxOccurrences {
			break
		}
		index := indexOf(entry.Period(), anchor, start)
		occurrences = append(occurrences, e.occurrence(entry, index, start, start.Add(duration)))
	}
	return occurrences, nil
}

// step walks the period by hand for rules rrule cannot reproduce exactly.
func (e *Engine) step(period calendar.Period, anchor time.Time, limit calendar.Limit, lower, upper time.Time) []time.Time {
	until := limitCutoff(limit, e.location)

	k := 0
	if period.IsClockOnly() && anchor.Before(lower) {
		k = int(lower.Sub(anchor) / period.Clock)
	}

	var out []time.Time
	for steps := 0; steps < maxSteps && len(out) < e.maxOccurrences; steps++ {
		if limit.Count > 0 && k >= limit.Count {
			break
		}
		t := period.Scale(k).AddTo(anchor)
		if !t.Before(upper) {
			break
		}
		if !until.IsZero() && t.After(until) {
			break
		}
		if !t.Before(lower) {
			out = append(out, t)
		}
		k++
	}
	return out
}

func (e *Engine) occurrence(entry *calendar.Entry, index int, start, end time.Time) Occurrence {
	return Occurrence{
		EntryID: entry.ID(),
		Name:    entry.Name(),
		Kind:    entry.Kind(),
		Index:   index,
		Start:   start.In(e.location),
		End:     end.In(e.location),
	}
}

// indexOf finds how many periods separate anchor from t.
func indexOf(period calendar.Period, anchor, t time.Time) int {
	if period.IsClockOnly() {
		return int(t.Sub(anchor) / period.Clock)
	}
	k := 0
	for k < maxSteps && period.Scale(k).AddTo(anchor).Before(t) {
		k++
	}
	return k
}

// limitCutoff returns the last instant an occurrence may start at.
func limitCutoff(limit calendar.Limit, loc *time.Location) time.Time {
	if limit.Until.IsZero() {
		return time.Time{}
	}
	y, m, d := limit.Until.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

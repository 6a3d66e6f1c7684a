// Package export writes calendar entries as an iCalendar stream.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/recurrence"
)

// DefaultProdID identifies the exporting application.
const DefaultProdID = "-//lifetracker//lifetracker//EN"

// PeriodProperty carries the period of recurring entries verbatim, for
// periods RRULE cannot express.
const PeriodProperty = ical.ComponentProperty("X-LIFETRACKER-PERIOD")

const utcLayout = "20060102T150405Z"

// Options tunes Write.
type Options struct {
	ProdID          string
	Now             time.Time
	Location        *time.Location
	IncludeArchived bool
}

// UID returns the stable iCalendar identifier of an entry.
func UID(id int) string {
	return fmt.Sprintf("entry-%d@lifetracker", id)
}

// Write serializes entries to w. Events become VEVENTs and tasks VTODOs;
// archived entries are skipped unless opts.IncludeArchived is set.
func Write(w io.Writer, entries []*calendar.Entry, opts Options) error {
	if w == nil {
		return errors.New("export: nil writer")
	}
	if opts.ProdID == "" {
		opts.ProdID = DefaultProdID
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProdID)

	for _, entry := range entries {
		if entry == nil || (!entry.IsActive() && !opts.IncludeArchived) {
			continue
		}
		if entry.Kind().IsTask() {
			addTodo(cal, entry, opts)
			continue
		}
		addEvent(cal, entry, opts)
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("export: serialize calendar: %w", err)
	}
	return nil
}

func addEvent(cal *ical.Calendar, entry *calendar.Entry, opts Options) {
	event := cal.AddEvent(UID(entry.ID()))
	event.SetDtStampTime(opts.Now)
	event.SetSummary(entry.Name())
	event.SetStartAt(entry.AnchorStart())
	event.SetEndAt(entry.AnchorEnd())
	if !entry.IsActive() {
		event.SetProperty(ical.ComponentPropertyStatus, "CANCELLED")
	}
	addRecurrence(&event.ComponentBase, entry, opts)
}

func addTodo(cal *ical.Calendar, entry *calendar.Entry, opts Options) {
	todo := cal.AddTodo(UID(entry.ID()))
	todo.SetProperty(ical.ComponentPropertyDtstamp, opts.Now.UTC().Format(utcLayout))
	todo.SetProperty(ical.ComponentPropertySummary, entry.Name())
	if entry.HasEnd() {
		todo.SetProperty(ical.ComponentPropertyDue, entry.AnchorEnd().UTC().Format(utcLayout))
	}
	status := "NEEDS-ACTION"
	if !entry.IsActive() {
		status = "COMPLETED"
	}
	todo.SetProperty(ical.ComponentPropertyStatus, status)
	addRecurrence(&todo.ComponentBase, entry, opts)
}

func addRecurrence(component *ical.ComponentBase, entry *calendar.Entry, opts Options) {
	if !entry.IsRecurring() {
		return
	}
	component.SetProperty(PeriodProperty, entry.Period().String())
	rule, err := recurrence.RuleString(entry, opts.Location)
	if err != nil {
		return
	}
	component.AddProperty(ical.ComponentPropertyRrule, rule)
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/example/lifetracker/internal/application"
	"github.com/example/lifetracker/internal/calendar"
)

const dateLayout = "Mon 02 Jan 2006 15:04"

// printResult writes a result as plain text tables.
func printResult(w io.Writer, result application.Result, loc *time.Location, now time.Time) {
	if loc == nil {
		loc = time.Local
	}
	if result.Comment != "" {
		_, _ = fmt.Fprintln(w, result.Comment)
	}

	if len(result.Tasks) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tTASK\tDUE\tREPEAT\tSTATUS")
		for _, line := range result.Tasks {
			due := "-"
			if !line.Due.IsZero() {
				due = line.Due.In(loc).Format(dateLayout)
			}
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
				line.ID, line.Name, due,
				repeat(line.Period, line.Remaining, line.Until, loc),
				taskStatus(line, now))
		}
		_ = tw.Flush()
	}

	if len(result.Events) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tEVENT\tSTART\tEND\tREPEAT\tSTATUS")
		for _, line := range result.Events {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				line.ID, line.Name,
				line.Start.In(loc).Format(dateLayout),
				line.End.In(loc).Format(dateLayout),
				repeat(line.Period, line.Remaining, line.Until, loc),
				eventStatus(line, now))
		}
		_ = tw.Flush()
	}

	for _, warning := range result.Warnings {
		_, _ = fmt.Fprintf(w, "! %d overlaps %d %q (%s - %s)\n",
			warning.EntryID, warning.WithID, warning.WithName,
			warning.Start.In(loc).Format(dateLayout), warning.End.In(loc).Format("15:04"))
	}

	if len(result.Agenda) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, o := range result.Agenda {
			when := o.Start.In(loc).Format(dateLayout)
			if !o.End.Equal(o.Start) {
				when += " - " + o.End.In(loc).Format("15:04")
			}
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", when, o.EntryID, o.Name)
		}
		_ = tw.Flush()
	}

	if len(result.History) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, item := range result.History {
			verb := item.Verb
			if item.Undo {
				verb = "undo " + verb
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", humanize.RelTime(item.RecordedAt, now, "ago", "from now"), verb, item.Comment)
		}
		_ = tw.Flush()
	}
}

func repeat(period calendar.Period, remaining int, until time.Time, loc *time.Location) string {
	if period.IsZero() {
		return "-"
	}
	parts := []string{"every " + period.String()}
	switch {
	case remaining > 0:
		parts = append(parts, humanize.Comma(int64(remaining))+" left")
	case !until.IsZero():
		parts = append(parts, "until "+until.In(loc).Format("02 Jan 2006"))
	}
	return strings.Join(parts, ", ")
}

func taskStatus(line application.TaskLine, now time.Time) string {
	var status string
	switch {
	case !line.Active:
		status = "done"
	case line.Overdue:
		status = "overdue " + humanize.RelTime(line.Due, now, "ago", "from now")
	default:
		status = "open"
	}
	if line.New {
		status += " (new)"
	}
	return status
}

func eventStatus(line application.EventLine, now time.Time) string {
	var status string
	switch {
	case !line.Active:
		status = "done"
	case line.Over:
		status = "over"
	case line.Ongoing:
		status = "ongoing"
	default:
		status = "starts " + humanize.RelTime(line.Start, now, "ago", "from now")
	}
	if line.New {
		status += " (new)"
	}
	return status
}

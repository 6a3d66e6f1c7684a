package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/lifetracker/internal/calendar"
)

// RuleString renders the recurrence of entry as the value of an iCalendar
// RRULE property, without DTSTART. Rules that only approximate the period
// (month ends, leap days) are still rendered.
func RuleString(entry *calendar.Entry, loc *time.Location) (string, error) {
	if !entry.IsRecurring() {
		return "", ErrUnsupportedPeriod
	}
	if loc == nil {
		loc = time.Local
	}
	anchor := entry.AnchorEnd()
	if entry.Kind() == calendar.KindRecurringEvent {
		anchor = entry.AnchorStart()
	}
	option, _, err := buildOption(entry.Period(), anchor.In(loc), entry.Limit(), loc)
	if err != nil {
		return "", err
	}
	return option.RRuleString(), nil
}

// buildOption maps a period onto an rrule option. exact reports whether
// rrule's expansion agrees with calendar.Period arithmetic: rrule skips
// months lacking the anchor day where periods clamp to the month end.
func buildOption(period calendar.Period, anchor time.Time, limit calendar.Limit, loc *time.Location) (rrule.ROption, bool, error) {
	option := rrule.ROption{Dtstart: anchor}
	exact := true

	months := period.Years*12 + period.Months
	switch {
	case period.IsZero():
		return rrule.ROption{}, false, ErrUnsupportedPeriod
	case months != 0:
		if period.Days != 0 || period.Clock != 0 {
			return rrule.ROption{}, false, ErrUnsupportedPeriod
		}
		if months%12 == 0 {
			option.Freq = rrule.YEARLY
			option.Interval = months / 12
			exact = !(anchor.Month() == time.February && anchor.Day() == 29)
		} else {
			option.Freq = rrule.MONTHLY
			option.Interval = months
		}
		if anchor.Day() > 28 {
			exact = false
		}
	case period.Days != 0 && period.Clock == 0:
		if period.Days%7 == 0 {
			option.Freq = rrule.WEEKLY
			option.Interval = period.Days / 7
		} else {
			option.Freq = rrule.DAILY
			option.Interval = period.Days
		}
	case period.Clock%time.Minute != 0:
		return rrule.ROption{}, false, ErrUnsupportedPeriod
	default:
		// Days plus clock time only matches a fixed duration away from
		// DST changes.
		total := time.Duration(period.Days)*24*time.Hour + period.Clock
		if period.Days != 0 {
			exact = false
		}
		if total%time.Hour == 0 {
			option.Freq = rrule.HOURLY
			option.Interval = int(total / time.Hour)
		} else {
			option.Freq = rrule.MINUTELY
			option.Interval = int(total / time.Minute)
		}
	}

	switch {
	case limit.Count > 0:
		option.Count = limit.Count
	case !limit.Until.IsZero():
		option.Until = limitCutoff(limit, loc)
	}
	return option, exact, nil
}

package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Period is a recurrence step. The calendar part (years, months, days) is
// applied first with month-end clamping, then the clock part.
type Period struct {
	Years  int
	Months int
	Days   int
	Clock  time.Duration
}

// Days returns a period of n days.
func Days(n int) Period { return Period{Days: n} }

// Weeks returns a period of n weeks, stored as 7n days.
func Weeks(n int) Period { return Period{Days: 7 * n} }

// Months returns a period of n months.
func Months(n int) Period { return Period{Months: n} }

// Years returns a period of n years.
func Years(n int) Period { return Period{Years: n} }

// Hours returns a clock period of n hours.
func Hours(n int) Period { return Period{Clock: time.Duration(n) * time.Hour} }

// Minutes returns a clock period of n minutes.
func Minutes(n int) Period { return Period{Clock: time.Duration(n) * time.Minute} }

// IsZero reports whether the period has no length.
func (p Period) IsZero() bool {
	return p.Years == 0 && p.Months == 0 && p.Days == 0 && p.Clock == 0
}

// IsClockOnly reports whether the period has no calendar component.
func (p Period) IsClockOnly() bool {
	return p.Years == 0 && p.Months == 0 && p.Days == 0 && p.Clock != 0
}

// AddTo returns t advanced by one period.
func (p Period) AddTo(t time.Time) time.Time {
	return p.apply(t, 1)
}

// SubtractFrom returns t moved back by one period.
func (p Period) SubtractFrom(t time.Time) time.Time {
	return p.apply(t, -1)
}

func (p Period) apply(t time.Time, sign int) time.Time {
	if p.Years != 0 || p.Months != 0 {
		t = addMonthsClamped(t, sign*(p.Years*12+p.Months))
	}
	if p.Days != 0 {
		t = t.AddDate(0, 0, sign*p.Days)
	}
	if p.Clock != 0 {
		t = t.Add(time.Duration(sign) * p.Clock)
	}
	return t
}

// addMonthsClamped moves t by n months, clamping the day to the last day of
// the target month (31 Jan + 1 month = 28/29 Feb).
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	first := time.Date(y, m+time.Month(n), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	last := daysIn(first.Month(), first.Year())
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// String renders the period in the same words the duration parser accepts.
func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	parts := make([]string, 0, 5)
	add := func(n int, unit string) {
		if n == 0 {
			return
		}
		if n == 1 {
			parts = append(parts, "1 "+unit)
			return
		}
		parts = append(parts, fmt.Sprintf("%d %ss", n, unit))
	}
	add(p.Years, "year")
	add(p.Months, "month")
	if p.Days != 0 && p.Days%7 == 0 {
		add(p.Days/7, "week")
	} else {
		add(p.Days, "day")
	}
	hours := int(p.Clock / time.Hour)
	minutes := int((p.Clock % time.Hour) / time.Minute)
	add(hours, "hour")
	add(minutes, "minute")
	return strings.Join(parts, " ")
}

// stepsUntil returns the smallest k >= minSteps such that anchor advanced k
// periods is not before now, together with that time.
func (p Period) stepsUntil(anchor, now time.Time, minSteps int) (int, time.Time) {
	if p.IsZero() {
		return 0, anchor
	}
	k := 0
	t := anchor
	if p.IsClockOnly() && anchor.Before(now) {
		k = int(now.Sub(anchor) / p.Clock)
		t = anchor.Add(time.Duration(k) * p.Clock)
	}
	for k < minSteps || t.Before(now) {
		k++
		t = p.advance(anchor, k)
	}
	return k, t
}

// Scale returns the period multiplied by k.
func (p Period) Scale(k int) Period {
	return Period{
		Years:  p.Years * k,
		Months: p.Months * k,
		Days:   p.Days * k,
		Clock:  p.Clock * time.Duration(k),
	}
}

// advance returns anchor moved forward k whole periods. Calendar components
// are applied from the anchor so month clamping does not drift.
func (p Period) advance(anchor time.Time, k int) time.Time {
	return p.Scale(k).AddTo(anchor)
}

package dateparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateTime is returned when a phrase has no recognisable date or time.
var ErrInvalidDateTime = errors.New("dateparse: invalid date/time")

var (
	reDayMonth     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2}|\d{4}))?$`)
	reISODate      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	reDayMonthName = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)(?:\s+(\d{4}))?$`)
	reMonthNameDay = regexp.MustCompile(`^([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?$`)
	reNextWeekday  = regexp.MustCompile(`^(?:(next|this)\s+)?([a-z]+)$`)

	reTime12h = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?(am|pm)$`)
	reTime24h = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)
	reTimeHM  = regexp.MustCompile(`^(\d{1,2})(\d{2})$`)
)

var relativeDays = map[string]int{
	"today":               0,
	"tdy":                 0,
	"tomorrow":            1,
	"tommorrow":           1,
	"tmr":                 1,
	"tmrw":                1,
	"day after tomorrow":  2,
	"day after tommorrow": 2,
	"overmorrow":          2,
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// endOfDayHour and endOfDayMinute give the clock time used for bare dates.
const (
	endOfDayHour   = 23
	endOfDayMinute = 59
)

// phrase is a parsed date/time phrase before it is resolved against now.
type phrase struct {
	date    time.Time
	hasDate bool
	hour    int
	minute  int
	hasTime bool
}

// ParseSingle parses one date/time phrase. A bare time lands today, or
// tomorrow when it is not after now. A bare date lands at 23:59. An empty
// phrase means today at 23:59.
func ParseSingle(s string, now time.Time) (time.Time, error) {
	p, err := analyze(s, now)
	if err != nil {
		return time.Time{}, err
	}
	return p.resolve(now), nil
}

// ParseDouble parses a start and end phrase. The start follows ParseSingle.
// An empty end is one hour after the start. An end with only a date keeps
// the start's clock time, falling back to start plus one hour when that is
// not after the start. An end with only a time lands on the start's date, or
// the next day when it is not after the start.
func ParseDouble(start, end string, now time.Time) (time.Time, time.Time, error) {
	from, err := ParseSingle(start, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	p, err := analyze(end, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	switch {
	case p.hasDate && p.hasTime:
		return from, p.resolve(now), nil
	case p.hasDate:
		to := at(p.date, from.Hour(), from.Minute())
		if !to.After(from) {
			to = from.Add(time.Hour)
		}
		return from, to, nil
	case p.hasTime:
		to := at(from, p.hour, p.minute)
		if !to.After(from) {
			to = to.AddDate(0, 0, 1)
		}
		return from, to, nil
	default:
		return from, from.Add(time.Hour), nil
	}
}

// IsDateTime reports whether s is a recognisable date/time phrase.
func IsDateTime(s string) bool {
	_, err := analyze(s, time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
	return err == nil
}

func (p phrase) resolve(now time.Time) time.Time {
	switch {
	case p.hasDate && p.hasTime:
		return at(p.date, p.hour, p.minute)
	case p.hasDate:
		return at(p.date, endOfDayHour, endOfDayMinute)
	case p.hasTime:
		t := at(now, p.hour, p.minute)
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t
	default:
		return at(now, endOfDayHour, endOfDayMinute)
	}
}

// analyze splits the phrase into a date part and a time part. The whole
// phrase is tried as a date first so that a trailing year is not mistaken
// for a 24-hour time.
func analyze(s string, now time.Time) (phrase, error) {
	fields := mergeMeridiem(strings.Fields(strings.ToLower(s)))
	if len(fields) == 0 {
		return phrase{}, nil
	}
	if d, ok := parseDate(strings.Join(fields, " "), now); ok {
		return phrase{date: d, hasDate: true}, nil
	}
	for _, idx := range []int{len(fields) - 1, 0} {
		h, m, ok := parseClock(fields[idx])
		if !ok {
			continue
		}
		rest := make([]string, 0, len(fields)-1)
		rest = append(rest, fields[:idx]...)
		rest = append(rest, fields[idx+1:]...)
		if len(rest) == 0 {
			return phrase{hour: h, minute: m, hasTime: true}, nil
		}
		if d, ok := parseDate(strings.Join(rest, " "), now); ok {
			return phrase{date: d, hasDate: true, hour: h, minute: m, hasTime: true}, nil
		}
	}
	return phrase{}, fmt.Errorf("%w: %q", ErrInvalidDateTime, s)
}

// mergeMeridiem joins a detached "am"/"pm" onto the preceding number.
func mergeMeridiem(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if (f == "am" || f == "pm") && len(out) > 0 {
			out[len(out)-1] += f
			continue
		}
		out = append(out, f)
	}
	return out
}

func parseDate(s string, now time.Time) (time.Time, bool) {
	if offset, ok := relativeDays[s]; ok {
		return now.AddDate(0, 0, offset), true
	}
	if m := reDayMonth.FindStringSubmatch(s); m != nil {
		return buildDate(now, m[3], atoi(m[2]), atoi(m[1]))
	}
	if m := reISODate.FindStringSubmatch(s); m != nil {
		return buildDate(now, m[1], atoi(m[2]), atoi(m[3]))
	}
	if m := reDayMonthName.FindStringSubmatch(s); m != nil {
		if month, ok := months[m[2]]; ok {
			return buildDate(now, m[3], int(month), atoi(m[1]))
		}
	}
	if m := reMonthNameDay.FindStringSubmatch(s); m != nil {
		if month, ok := months[m[1]]; ok {
			return buildDate(now, m[3], int(month), atoi(m[2]))
		}
	}
	if m := reNextWeekday.FindStringSubmatch(s); m != nil {
		if wd, ok := weekdays[m[2]]; ok {
			ahead := (int(wd) - int(now.Weekday()) + 7) % 7
			if m[1] == "next" && ahead == 0 {
				ahead = 7
			}
			return now.AddDate(0, 0, ahead), true
		}
	}
	return time.Time{}, false
}

// buildDate validates day and month, defaulting the year to now's and
// expanding two-digit years into this century.
func buildDate(now time.Time, year string, month, day int) (time.Time, bool) {
	y := now.Year()
	if year != "" {
		y = atoi(year)
		if len(year) == 2 {
			y += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(y, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func parseClock(s string) (int, int, bool) {
	switch s {
	case "noon":
		return 12, 0, true
	case "midnight":
		return 0, 0, true
	}
	if m := reTime12h.FindStringSubmatch(s); m != nil {
		h, mm := atoi(m[1]), atoi(m[2])
		if h < 1 || h > 12 || mm > 59 {
			return 0, 0, false
		}
		h %= 12
		if m[3] == "pm" {
			h += 12
		}
		return h, mm, true
	}
	m := reTime24h.FindStringSubmatch(s)
	if m == nil {
		m = reTimeHM.FindStringSubmatch(s)
	}
	if m == nil {
		return 0, 0, false
	}
	h, mm := atoi(m[1]), atoi(m[2])
	if h > 23 || mm > 59 {
		return 0, 0, false
	}
	return h, mm, true
}

func at(day time.Time, hour, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location())
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

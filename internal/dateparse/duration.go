// Package dateparse turns the free-form date, time and duration phrases typed
// at the prompt into structured values. Every function is pure; the current
// instant is always passed in.
package dateparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/example/lifetracker/internal/calendar"
)

// ErrInvalidDuration is returned when a phrase is not "[count] unit".
var ErrInvalidDuration = errors.New("dateparse: invalid duration")

var durationPattern = regexp.MustCompile(`^(?:(\d+)\s*)?([a-z]+)$`)

var durationUnits = map[string]func(int) calendar.Period{
	"year":   calendar.Years,
	"month":  calendar.Months,
	"week":   calendar.Weeks,
	"day":    calendar.Days,
	"hour":   calendar.Hours,
	"hr":     calendar.Hours,
	"minute": calendar.Minutes,
	"min":    calendar.Minutes,
}

// ParseDuration parses an optional positive count followed by a unit word,
// such as "2 weeks", "day" or "3 hours". A plural "s" is ignored.
func ParseDuration(s string) (calendar.Period, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return calendar.Period{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return calendar.Period{}, fmt.Errorf("%w: count must be positive in %q", ErrInvalidDuration, s)
		}
		count = n
	}
	unit := m[2]
	build, ok := durationUnits[unit]
	if !ok {
		build, ok = durationUnits[strings.TrimSuffix(unit, "s")]
	}
	if !ok {
		return calendar.Period{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidDuration, unit)
	}
	return build(count), nil
}

// IsDuration reports whether ParseDuration would accept s.
func IsDuration(s string) bool {
	_, err := ParseDuration(s)
	return err == nil
}

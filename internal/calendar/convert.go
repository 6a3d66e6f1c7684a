package calendar

import (
	"fmt"
	"time"
)

// Pair is the outcome of a conversion: Old is an untouched copy of the
// source, New is the converted entry carrying the source id and active flag.
type Pair struct {
	Old *Entry
	New *Entry
}

// LimitMode selects how a recurring conversion bounds the new recurrence.
type LimitMode int

const (
	// LimitModeUnlimited drops any prior limit unless KeepLimit is set.
	LimitModeUnlimited LimitMode = iota
	// LimitModeCount bounds the recurrence by RecurringOptions.Count.
	LimitModeCount
	// LimitModeDate bounds the recurrence by RecurringOptions.Until.
	LimitModeDate
)

// RecurringOptions carries the values supplied to a recurring conversion.
// Zero fields fall back to the source entry.
type RecurringOptions struct {
	Name      string
	Start     time.Time
	End       time.Time
	Period    Period
	LimitMode LimitMode
	Count     int
	Until     time.Time
	KeepLimit bool
	Force     bool
}

// ToGeneric converts any entry into a floating task. Every temporal field is
// dropped and the target is built fresh, so no recurrence state survives.
func ToGeneric(src *Entry, name string) (Pair, error) {
	switch k := src.Kind(); k {
	case KindFloating, KindDeadline, KindRecurringTask, KindEvent, KindRecurringEvent:
		target, err := NewFloating(pick(name, src.name))
		if err != nil {
			return Pair{}, err
		}
		return carry(src, target), nil
	default:
		return Pair{}, unknownKind(k)
	}
}

// ToDeadline converts an entry into a one-off deadline task. Without a new
// end it keeps the end of the occurrence relevant at now. Dropping a start
// time or a period requires force.
func ToDeadline(src *Entry, now time.Time, name string, end time.Time, force bool) (Pair, error) {
	end = pickTime(end, src.End(now))
	switch k := src.Kind(); k {
	case KindFloating, KindDeadline:
	case KindRecurringTask, KindEvent, KindRecurringEvent:
		if !force {
			return Pair{}, fmt.Errorf("%s to deadline: %w", k, ErrConversionLoss)
		}
	default:
		return Pair{}, unknownKind(k)
	}
	target, err := NewDeadline(pick(name, src.name), end)
	if err != nil {
		return Pair{}, err
	}
	return carry(src, target), nil
}

// ToEvent converts an entry into a one-off event. Missing times are taken
// from the occurrence relevant at now. Sources without a start need one
// supplied; dropping a period requires force.
func ToEvent(src *Entry, now time.Time, name string, start, end time.Time, force bool) (Pair, error) {
	switch k := src.Kind(); k {
	case KindFloating, KindDeadline, KindEvent:
	case KindRecurringTask, KindRecurringEvent:
		if !force {
			return Pair{}, fmt.Errorf("%s to event: %w", k, ErrConversionLoss)
		}
	default:
		return Pair{}, unknownKind(k)
	}
	target, err := NewEvent(pick(name, src.name), pickTime(start, src.Start(now)), pickTime(end, src.End(now)))
	if err != nil {
		return Pair{}, err
	}
	return carry(src, target), nil
}

// ToRecurringTask converts an entry into a recurring task. An event source is
// only turned into a task when forced; otherwise it becomes a recurring
// event with its start and end preserved.
func ToRecurringTask(src *Entry, opts RecurringOptions) (Pair, error) {
	switch k := src.Kind(); k {
	case KindFloating, KindDeadline, KindRecurringTask:
	case KindEvent, KindRecurringEvent:
		if !opts.Force {
			return ToRecurringEvent(src, opts)
		}
	default:
		return Pair{}, unknownKind(k)
	}
	end := pickTime(opts.End, src.end)
	if end.IsZero() {
		return Pair{}, ErrEmptyDeadline
	}
	period := pickPeriod(opts.Period, src.period)
	if period.IsZero() {
		return Pair{}, ErrEmptyPeriod
	}
	limit, err := resolveLimit(src, opts)
	if err != nil {
		return Pair{}, err
	}
	target, err := NewRecurringTask(pick(opts.Name, src.name), end, period, limit)
	if err != nil {
		return Pair{}, err
	}
	return carry(src, target), nil
}

// ToRecurringEvent converts an entry into a recurring event. Start, end and
// period must resolve from the options or the source.
func ToRecurringEvent(src *Entry, opts RecurringOptions) (Pair, error) {
	switch k := src.Kind(); k {
	case KindFloating, KindDeadline, KindRecurringTask, KindEvent, KindRecurringEvent:
	default:
		return Pair{}, unknownKind(k)
	}
	start := pickTime(opts.Start, src.start)
	if start.IsZero() {
		return Pair{}, ErrEmptyStart
	}
	end := pickTime(opts.End, src.end)
	if end.IsZero() {
		return Pair{}, ErrEmptyDeadline
	}
	period := pickPeriod(opts.Period, src.period)
	if period.IsZero() {
		return Pair{}, ErrEmptyPeriod
	}
	limit, err := resolveLimit(src, opts)
	if err != nil {
		return Pair{}, err
	}
	target, err := NewRecurringEvent(pick(opts.Name, src.name), start, end, period, limit)
	if err != nil {
		return Pair{}, err
	}
	return carry(src, target), nil
}

func resolveLimit(src *Entry, opts RecurringOptions) (Limit, error) {
	switch opts.LimitMode {
	case LimitModeUnlimited:
		if opts.KeepLimit {
			return src.Limit(), nil
		}
		return NoLimit, nil
	case LimitModeCount:
		if opts.Count <= 0 {
			return Limit{}, ErrInvalidLimit
		}
		return LimitCount(opts.Count), nil
	case LimitModeDate:
		if opts.Until.IsZero() {
			return Limit{}, ErrInvalidLimit
		}
		return LimitUntil(opts.Until), nil
	default:
		return Limit{}, fmt.Errorf("calendar: unknown limit mode %d", opts.LimitMode)
	}
}

func carry(src, target *Entry) Pair {
	target.id = src.id
	target.active = src.active
	return Pair{Old: src.Copy(), New: target}
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func pickTime(value, fallback time.Time) time.Time {
	if !value.IsZero() {
		return value
	}
	return fallback
}

func pickPeriod(value, fallback Period) Period {
	if !value.IsZero() {
		return value
	}
	return fallback
}

func unknownKind(k Kind) error {
	return fmt.Errorf("calendar: unknown entry kind %d", int(k))
}

// Package calendar holds the tracker's domain model: entries in their five
// shapes, the conversions between those shapes, and the four-partition list
// that owns them.
//
// Entries never read the wall clock. Every time-dependent query takes the
// reference instant explicitly, and the List carries an injected clock.
package calendar

import (
	"strings"
	"time"
)

// Kind identifies which of the five entry shapes an entry currently has.
// It is derived from the populated fields, never stored.
type Kind int

const (
	// KindFloating has neither start nor end.
	KindFloating Kind = iota
	// KindDeadline has an end only.
	KindDeadline
	// KindRecurringTask is a deadline with a period.
	KindRecurringTask
	// KindEvent has a start and an end.
	KindEvent
	// KindRecurringEvent is an event with a period.
	KindRecurringEvent
)

func (k Kind) String() string {
	switch k {
	case KindFloating:
		return "floating"
	case KindDeadline:
		return "deadline"
	case KindRecurringTask:
		return "recurring task"
	case KindEvent:
		return "event"
	case KindRecurringEvent:
		return "recurring event"
	default:
		return "unknown"
	}
}

// IsTask reports whether entries of this kind live in the task partitions.
func (k Kind) IsTask() bool {
	return k == KindFloating || k == KindDeadline || k == KindRecurringTask
}

// Limit bounds a recurrence either by a remaining occurrence count or by a
// last date. The zero value is unlimited.
type Limit struct {
	Count int
	Until time.Time
}

// NoLimit is the unlimited recurrence bound.
var NoLimit = Limit{}

// LimitCount bounds a recurrence to n more occurrences, the current one included.
func LimitCount(n int) Limit { return Limit{Count: n} }

// LimitUntil bounds a recurrence to occurrences on or before the given date.
func LimitUntil(date time.Time) Limit { return Limit{Until: startOfDay(date)} }

// IsZero reports whether the limit is unlimited.
func (l Limit) IsZero() bool { return l.Count == 0 && l.Until.IsZero() }

func (l Limit) validate() error {
	if l.Count < 0 {
		return ErrInvalidLimit
	}
	if l.Count > 0 && !l.Until.IsZero() {
		return ErrConflictingLimits
	}
	return nil
}

// Entry is a single task or event. The zero value is not usable; build
// entries with the New* constructors or through a List.
type Entry struct {
	id         int
	name       string
	start      time.Time
	end        time.Time
	period     Period
	limitCount int
	limitDate  time.Time
	active     bool
}

// NewFloating builds a task with no temporal anchor.
func NewFloating(name string) (*Entry, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return &Entry{name: name, active: true}, nil
}

// NewDeadline builds a task due at end.
func NewDeadline(name string, end time.Time) (*Entry, error) {
	e, err := NewFloating(name)
	if err != nil {
		return nil, err
	}
	if end.IsZero() {
		return nil, ErrEmptyDeadline
	}
	e.end = end
	return e, nil
}

// NewRecurringTask builds a deadline task that repeats every period.
func NewRecurringTask(name string, end time.Time, period Period, limit Limit) (*Entry, error) {
	e, err := NewDeadline(name, end)
	if err != nil {
		return nil, err
	}
	if err := e.setRecurrence(period, limit); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEvent builds a one-off event spanning [start, end].
func NewEvent(name string, start, end time.Time) (*Entry, error) {
	e, err := NewFloating(name)
	if err != nil {
		return nil, err
	}
	if start.IsZero() {
		return nil, ErrEmptyStart
	}
	if end.IsZero() {
		return nil, ErrEmptyDeadline
	}
	if err := checkStartBeforeEnd(start, end); err != nil {
		return nil, err
	}
	e.start, e.end = start, end
	return e, nil
}

// NewRecurringEvent builds an event whose window repeats every period.
func NewRecurringEvent(name string, start, end time.Time, period Period, limit Limit) (*Entry, error) {
	e, err := NewEvent(name, start, end)
	if err != nil {
		return nil, err
	}
	if err := e.setRecurrence(period, limit); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Entry) setRecurrence(period Period, limit Limit) error {
	if period.IsZero() {
		return ErrEmptyPeriod
	}
	if err := limit.validate(); err != nil {
		return err
	}
	e.period = period
	e.applyLimit(limit)
	return nil
}

// ID returns the list-assigned identifier, or 0 for an unfiled entry.
func (e *Entry) ID() int { return e.id }

// Name returns the entry name.
func (e *Entry) Name() string { return e.name }

// SetName renames the entry.
func (e *Entry) SetName(name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	e.name = name
	return nil
}

// Kind derives the entry shape from its populated fields.
func (e *Entry) Kind() Kind {
	switch {
	case !e.start.IsZero() && e.IsRecurring():
		return KindRecurringEvent
	case !e.start.IsZero():
		return KindEvent
	case !e.end.IsZero() && e.IsRecurring():
		return KindRecurringTask
	case !e.end.IsZero():
		return KindDeadline
	default:
		return KindFloating
	}
}

// HasStart reports whether a start time is set.
func (e *Entry) HasStart() bool { return !e.start.IsZero() }

// HasEnd reports whether an end time or deadline is set.
func (e *Entry) HasEnd() bool { return !e.end.IsZero() }

// AnchorStart returns the stored start. For recurring events this is the
// first occurrence, not the current one.
func (e *Entry) AnchorStart() time.Time { return e.start }

// AnchorEnd returns the stored end or deadline.
func (e *Entry) AnchorEnd() time.Time { return e.end }

// Start returns the start of the occurrence relevant at now. Recurring
// events resolve to the ongoing occurrence, or the next one.
func (e *Entry) Start(now time.Time) time.Time {
	if e.Kind() != KindRecurringEvent {
		return e.start
	}
	k := e.occurrenceAt(now)
	return e.period.advance(e.start, k)
}

// End returns the end of the occurrence relevant at now.
func (e *Entry) End(now time.Time) time.Time {
	if e.Kind() != KindRecurringEvent {
		return e.end
	}
	k := e.occurrenceAt(now)
	return e.period.advance(e.end, k)
}

// occurrenceAt returns the index of the first occurrence whose end is not
// before now, clamped to the last occurrence the limit allows.
func (e *Entry) occurrenceAt(now time.Time) int {
	k, _ := e.period.stepsUntil(e.end, now, 0)
	if last, bounded := e.lastOccurrence(); bounded && k > last {
		return last
	}
	return k
}

// lastOccurrence returns the index of the final occurrence of a bounded
// recurring event.
func (e *Entry) lastOccurrence() (int, bool) {
	switch {
	case e.limitCount > 0:
		return e.limitCount - 1, true
	case !e.limitDate.IsZero():
		cutoff := endOfDay(e.limitDate)
		k := 0
		for !e.period.advance(e.start, k+1).After(cutoff) {
			k++
		}
		return k, true
	default:
		return 0, false
	}
}

// SetStart moves the start of an event.
func (e *Entry) SetStart(start time.Time) error {
	if !e.HasStart() {
		return ErrIllegalTypeChange
	}
	if start.IsZero() {
		return ErrEmptyStart
	}
	if err := checkStartBeforeEnd(start, e.end); err != nil {
		return err
	}
	e.start = start
	return nil
}

// SetEnd moves the end or deadline. Giving a floating task an end turns it
// into a deadline task.
func (e *Entry) SetEnd(end time.Time) error {
	if end.IsZero() {
		return ErrEmptyDeadline
	}
	if e.HasStart() {
		if err := checkStartBeforeEnd(e.start, end); err != nil {
			return err
		}
	}
	e.end = end
	return nil
}

// SetSpan replaces start and end together, validating them as a pair.
func (e *Entry) SetSpan(start, end time.Time) error {
	if !e.HasStart() {
		return ErrIllegalTypeChange
	}
	if start.IsZero() {
		return ErrEmptyStart
	}
	if end.IsZero() {
		return ErrEmptyDeadline
	}
	if err := checkStartBeforeEnd(start, end); err != nil {
		return err
	}
	e.start, e.end = start, end
	return nil
}

// Period returns the recurrence step, zero for one-off entries.
func (e *Entry) Period() Period { return e.period }

// SetPeriod attaches or replaces the recurrence step. A zero period stops
// recurrence and drops any limit. Floating tasks cannot recur.
func (e *Entry) SetPeriod(p Period) error {
	if p.IsZero() {
		e.period = Period{}
		e.applyLimit(NoLimit)
		return nil
	}
	if !e.HasEnd() {
		return ErrEmptyDeadline
	}
	e.period = p
	return nil
}

// IsRecurring reports whether a period is attached.
func (e *Entry) IsRecurring() bool { return !e.period.IsZero() }

// Limit returns the recurrence bound.
func (e *Entry) Limit() Limit {
	return Limit{Count: e.limitCount, Until: e.limitDate}
}

// OccurrenceLimit returns the remaining occurrence count, if bounded by count.
func (e *Entry) OccurrenceLimit() (int, bool) {
	return e.limitCount, e.limitCount > 0
}

// LimitDate returns the last date of the recurrence, if bounded by date.
func (e *Entry) LimitDate() (time.Time, bool) {
	return e.limitDate, !e.limitDate.IsZero()
}

// SetLimit replaces the recurrence bound. Count and date are exclusive.
func (e *Entry) SetLimit(l Limit) error {
	if err := l.validate(); err != nil {
		return err
	}
	if !l.IsZero() && !e.IsRecurring() {
		return ErrNotRecurring
	}
	e.applyLimit(l)
	return nil
}

// RemoveLimit makes the recurrence unbounded.
func (e *Entry) RemoveLimit() { e.applyLimit(NoLimit) }

func (e *Entry) applyLimit(l Limit) {
	e.limitCount = l.Count
	e.limitDate = time.Time{}
	if !l.Until.IsZero() {
		e.limitDate = startOfDay(l.Until)
	}
}

// IsActive reports whether the entry is not done.
func (e *Entry) IsActive() bool { return e.active }

// Mark records completion. Recurring tasks jump to their next future
// deadline instead of completing, until their limit is exhausted.
func (e *Entry) Mark(now time.Time) {
	if e.Kind() != KindRecurringTask {
		e.active = !e.active
		return
	}
	steps, next := e.period.stepsUntil(e.end, now, 1)
	if e.exhausted(steps, next) {
		e.active = !e.active
		return
	}
	e.end = next
	if e.limitCount > 0 {
		e.limitCount -= steps
	}
	e.active = true
}

func (e *Entry) exhausted(steps int, next time.Time) bool {
	if e.limitCount > 0 && e.limitCount-steps <= 0 {
		return true
	}
	if !e.limitDate.IsZero() && next.After(endOfDay(e.limitDate)) {
		return true
	}
	return false
}

// IsOver reports whether the relevant end has passed.
func (e *Entry) IsOver(now time.Time) bool {
	if e.Kind() == KindFloating {
		return false
	}
	return now.After(e.End(now))
}

// IsOngoing reports whether the entry is current at now: floating tasks
// always, deadlines until due, events while now falls inside the window.
func (e *Entry) IsOngoing(now time.Time) bool {
	switch e.Kind() {
	case KindFloating:
		return true
	case KindDeadline, KindRecurringTask:
		return !e.IsOver(now)
	default:
		start := e.Start(now)
		return !now.Before(start) && !e.IsOver(now)
	}
}

// IsToday reports whether the entry falls on now's calendar day.
func (e *Entry) IsToday(now time.Time) bool {
	switch e.Kind() {
	case KindFloating:
		return false
	case KindDeadline, KindRecurringTask:
		return sameDay(e.End(now), now)
	default:
		return sameDay(e.Start(now), now) || e.IsOngoing(now)
	}
}

// Copy returns an independent clone with the same id.
func (e *Entry) Copy() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

// Equal compares kind, name and the stored start and end. Ids, periods and
// limits are ignored.
func (e *Entry) Equal(other *Entry) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Kind() == other.Kind() &&
		e.name == other.name &&
		e.start.Equal(other.start) &&
		e.end.Equal(other.end)
}

func checkStartBeforeEnd(start, end time.Time) error {
	if !start.Before(end) {
		return ErrStartNotBeforeEnd
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

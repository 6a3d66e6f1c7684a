package calendar

import (
	"slices"
	"time"
)

// List owns every entry in four id-keyed partitions. It has no locking; the
// caller serialises access. Every entry handed out is a copy.
type List struct {
	activeTasks    map[int]*Entry
	activeEvents   map[int]*Entry
	archivedTasks  map[int]*Entry
	archivedEvents map[int]*Entry
	now            func() time.Time
}

// EntryUpdate carries the fields of an in-place edit. Zero values leave the
// corresponding field unchanged.
type EntryUpdate struct {
	Name   string
	Start  time.Time
	End    time.Time
	Period Period
}

// NewList returns an empty list using now as its clock. A nil clock falls
// back to time.Now.
func NewList(now func() time.Time) *List {
	if now == nil {
		now = time.Now
	}
	return &List{
		activeTasks:    make(map[int]*Entry),
		activeEvents:   make(map[int]*Entry),
		archivedTasks:  make(map[int]*Entry),
		archivedEvents: make(map[int]*Entry),
		now:            now,
	}
}

// Now returns the list's reference instant.
func (l *List) Now() time.Time { return l.now() }

// AddFloating files a new floating task.
func (l *List) AddFloating(name string) (*Entry, error) {
	e, err := NewFloating(name)
	if err != nil {
		return nil, err
	}
	return l.add(e), nil
}

// AddDeadline files a new deadline task.
func (l *List) AddDeadline(name string, end time.Time) (*Entry, error) {
	e, err := NewDeadline(name, end)
	if err != nil {
		return nil, err
	}
	return l.add(e), nil
}

// AddRecurringTask files a new recurring task.
func (l *List) AddRecurringTask(name string, end time.Time, period Period, limit Limit) (*Entry, error) {
	e, err := NewRecurringTask(name, end, period, limit)
	if err != nil {
		return nil, err
	}
	return l.add(e), nil
}

// AddEvent files a new event.
func (l *List) AddEvent(name string, start, end time.Time) (*Entry, error) {
	e, err := NewEvent(name, start, end)
	if err != nil {
		return nil, err
	}
	return l.add(e), nil
}

// AddRecurringEvent files a new recurring event.
func (l *List) AddRecurringEvent(name string, start, end time.Time, period Period, limit Limit) (*Entry, error) {
	e, err := NewRecurringEvent(name, start, end, period, limit)
	if err != nil {
		return nil, err
	}
	return l.add(e), nil
}

func (l *List) add(e *Entry) *Entry {
	e.id = l.NextID()
	e.active = true
	l.file(e)
	return e.Copy()
}

// Insert files a copy of an existing entry, keeping its id when that id is
// positive and unused. Otherwise the entry gets the next id.
func (l *List) Insert(e *Entry) (*Entry, error) {
	if e == nil {
		return nil, ErrEmptyName
	}
	if err := e.check(); err != nil {
		return nil, err
	}
	clone := e.Copy()
	if _, _, taken := l.locate(clone.id); clone.id <= 0 || taken {
		clone.id = l.NextID()
	}
	l.file(clone)
	return clone.Copy(), nil
}

// NextID returns the id the next added entry will receive.
func (l *List) NextID() int {
	highest := 0
	for _, part := range l.partitions() {
		for id := range part {
			if id > highest {
				highest = id
			}
		}
	}
	return highest + 1
}

// Get returns a copy of the entry with the given id.
func (l *List) Get(id int) (*Entry, error) {
	_, e, ok := l.locate(id)
	if !ok {
		return nil, notFound(id)
	}
	return e.Copy(), nil
}

// Delete removes the entry with the given id and returns it.
func (l *List) Delete(id int) (*Entry, error) {
	part, e, ok := l.locate(id)
	if !ok {
		return nil, notFound(id)
	}
	delete(part, id)
	return e.Copy(), nil
}

// Update edits an entry in place without changing its kind, except that a
// floating task given an end becomes a deadline. It returns the entry as it
// was before the edit. Nothing is modified on error.
func (l *List) Update(id int, u EntryUpdate) (*Entry, error) {
	part, e, ok := l.locate(id)
	if !ok {
		return nil, notFound(id)
	}
	work := e.Copy()
	if u.Name != "" {
		if err := work.SetName(u.Name); err != nil {
			return nil, err
		}
	}
	var err error
	switch {
	case !u.Start.IsZero() && !u.End.IsZero():
		err = work.SetSpan(u.Start, u.End)
	case !u.Start.IsZero():
		err = work.SetStart(u.Start)
	case !u.End.IsZero():
		err = work.SetEnd(u.End)
	}
	if err != nil {
		return nil, err
	}
	if !u.Period.IsZero() {
		if err := work.SetPeriod(u.Period); err != nil {
			return nil, err
		}
	}
	delete(part, id)
	l.file(work)
	return e.Copy(), nil
}

// Replace overwrites the entry sharing e's id, re-filing it by kind and
// active flag, and returns the previous version.
func (l *List) Replace(e *Entry) (*Entry, error) {
	if e == nil {
		return nil, ErrEmptyName
	}
	part, prev, ok := l.locate(e.id)
	if !ok {
		return nil, notFound(e.id)
	}
	if err := e.check(); err != nil {
		return nil, err
	}
	delete(part, e.id)
	l.file(e.Copy())
	return prev.Copy(), nil
}

// ToGeneric converts the entry into a floating task and returns the old entry.
func (l *List) ToGeneric(id int, name string) (*Entry, error) {
	return l.convert(id, func(e *Entry) (Pair, error) {
		return ToGeneric(e, name)
	})
}

// ToDeadline converts the entry into a deadline task and returns the old entry.
// A recurring source keeps the deadline of its current occurrence.
func (l *List) ToDeadline(id int, name string, end time.Time, force bool) (*Entry, error) {
	return l.convert(id, func(e *Entry) (Pair, error) {
		return ToDeadline(e, l.now(), name, end, force)
	})
}

// ToEvent converts the entry into an event and returns the old entry. A
// recurring source keeps the window of its current occurrence.
func (l *List) ToEvent(id int, name string, start, end time.Time, force bool) (*Entry, error) {
	return l.convert(id, func(e *Entry) (Pair, error) {
		return ToEvent(e, l.now(), name, start, end, force)
	})
}

// ToRecurringTask converts the entry into a recurring task and returns the
// old entry.
func (l *List) ToRecurringTask(id int, opts RecurringOptions) (*Entry, error) {
	return l.convert(id, func(e *Entry) (Pair, error) {
		return ToRecurringTask(e, opts)
	})
}

// ToRecurringEvent converts the entry into a recurring event and returns the
// old entry.
func (l *List) ToRecurringEvent(id int, opts RecurringOptions) (*Entry, error) {
	return l.convert(id, func(e *Entry) (Pair, error) {
		return ToRecurringEvent(e, opts)
	})
}

func (l *List) convert(id int, fn func(*Entry) (Pair, error)) (*Entry, error) {
	part, e, ok := l.locate(id)
	if !ok {
		return nil, notFound(id)
	}
	pair, err := fn(e)
	if err != nil {
		return nil, err
	}
	delete(part, id)
	l.file(pair.New)
	return pair.Old, nil
}

// Mark completes the entry (or advances a recurring task) and re-files it.
// It returns copies from before and after the mark.
func (l *List) Mark(id int) (*Entry, *Entry, error) {
	part, e, ok := l.locate(id)
	if !ok {
		return nil, nil, notFound(id)
	}
	old := e.Copy()
	e.Mark(l.now())
	delete(part, id)
	l.file(e)
	return old, e.Copy(), nil
}

// ActiveTasks returns the active task partition in id order.
func (l *List) ActiveTasks() []*Entry { return byID(l.activeTasks) }

// ActiveEvents returns the active event partition in id order.
func (l *List) ActiveEvents() []*Entry { return byID(l.activeEvents) }

// ArchivedTasks returns the archived task partition in id order.
func (l *List) ArchivedTasks() []*Entry { return byID(l.archivedTasks) }

// ArchivedEvents returns the archived event partition in id order.
func (l *List) ArchivedEvents() []*Entry { return byID(l.archivedEvents) }

// All returns every entry in id order regardless of partition.
func (l *List) All() []*Entry {
	all := make([]*Entry, 0, l.Len())
	for _, part := range l.partitions() {
		for _, e := range part {
			all = append(all, e.Copy())
		}
	}
	slices.SortFunc(all, func(a, b *Entry) int { return a.id - b.id })
	return all
}

// Len returns the number of entries across all partitions.
func (l *List) Len() int {
	n := 0
	for _, part := range l.partitions() {
		n += len(part)
	}
	return n
}

// Clone returns a deep copy sharing the clock.
func (l *List) Clone() *List {
	out := NewList(l.now)
	for _, part := range l.partitions() {
		for _, e := range part {
			out.file(e.Copy())
		}
	}
	return out
}

func (l *List) partitions() []map[int]*Entry {
	return []map[int]*Entry{l.activeTasks, l.activeEvents, l.archivedTasks, l.archivedEvents}
}

func (l *List) locate(id int) (map[int]*Entry, *Entry, bool) {
	for _, part := range l.partitions() {
		if e, ok := part[id]; ok {
			return part, e, true
		}
	}
	return nil, nil, false
}

func (l *List) file(e *Entry) {
	task := e.Kind().IsTask()
	switch {
	case task && e.active:
		l.activeTasks[e.id] = e
	case task:
		l.archivedTasks[e.id] = e
	case e.active:
		l.activeEvents[e.id] = e
	default:
		l.archivedEvents[e.id] = e
	}
}

func byID(part map[int]*Entry) []*Entry {
	out := make([]*Entry, 0, len(part))
	for _, e := range part {
		out = append(out, e.Copy())
	}
	slices.SortFunc(out, func(a, b *Entry) int { return a.id - b.id })
	return out
}

// check re-validates an entry built outside the constructors.
func (e *Entry) check() error {
	if _, err := cleanName(e.name); err != nil {
		return err
	}
	if e.HasStart() && !e.HasEnd() {
		return ErrEmptyDeadline
	}
	if e.HasStart() {
		if err := checkStartBeforeEnd(e.start, e.end); err != nil {
			return err
		}
	}
	if e.IsRecurring() && !e.HasEnd() {
		return ErrEmptyDeadline
	}
	return e.Limit().validate()
}

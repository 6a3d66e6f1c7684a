package calendar

import "time"

// Snapshot is the flat form of an entry used by storage and export. The
// partition an entry lives in follows from Kind and Active.
type Snapshot struct {
	ID     int
	Name   string
	Start  time.Time
	End    time.Time
	Period Period
	Limit  Limit
	Active bool
}

// Snapshot flattens the entry.
func (e *Entry) Snapshot() Snapshot {
	return Snapshot{
		ID:     e.id,
		Name:   e.name,
		Start:  e.start,
		End:    e.end,
		Period: e.period,
		Limit:  e.Limit(),
		Active: e.active,
	}
}

// FromSnapshot rebuilds an entry, enforcing the same invariants as the
// constructors.
func FromSnapshot(s Snapshot) (*Entry, error) {
	e := &Entry{
		id:     s.ID,
		name:   s.Name,
		start:  s.Start,
		end:    s.End,
		period: s.Period,
		active: s.Active,
	}
	e.applyLimit(s.Limit)
	if err := e.check(); err != nil {
		return nil, err
	}
	if !s.Limit.IsZero() && !e.IsRecurring() {
		return nil, ErrNotRecurring
	}
	return e, nil
}

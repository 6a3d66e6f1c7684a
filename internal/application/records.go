package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/persistence"
)

func partitionOf(e *calendar.Entry) persistence.Partition {
	switch {
	case e.Kind().IsTask() && e.IsActive():
		return persistence.PartitionActiveTasks
	case e.Kind().IsTask():
		return persistence.PartitionArchivedTasks
	case e.IsActive():
		return persistence.PartitionActiveEvents
	default:
		return persistence.PartitionArchivedEvents
	}
}

func toRecord(e *calendar.Entry, updatedAt time.Time) persistence.EntryRecord {
	s := e.Snapshot()
	return persistence.EntryRecord{
		ID:           s.ID,
		Partition:    partitionOf(e),
		Name:         s.Name,
		Start:        optionalTime(s.Start),
		End:          optionalTime(s.End),
		PeriodYears:  s.Period.Years,
		PeriodMonths: s.Period.Months,
		PeriodDays:   s.Period.Days,
		PeriodClock:  s.Period.Clock,
		LimitCount:   s.Limit.Count,
		LimitDate:    optionalTime(s.Limit.Until),
		UpdatedAt:    updatedAt,
	}
}

func toRecords(list *calendar.List, updatedAt time.Time) []persistence.EntryRecord {
	entries := list.All()
	records := make([]persistence.EntryRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, toRecord(e, updatedAt))
	}
	return records
}

// fromRecord rebuilds an entry and checks that the stored partition agrees
// with what the entry's fields imply.
func fromRecord(rec persistence.EntryRecord) (*calendar.Entry, error) {
	active := rec.Partition == persistence.PartitionActiveTasks || rec.Partition == persistence.PartitionActiveEvents
	e, err := calendar.FromSnapshot(calendar.Snapshot{
		ID:    rec.ID,
		Name:  rec.Name,
		Start: derefTime(rec.Start),
		End:   derefTime(rec.End),
		Period: calendar.Period{
			Years:  rec.PeriodYears,
			Months: rec.PeriodMonths,
			Days:   rec.PeriodDays,
			Clock:  rec.PeriodClock,
		},
		Limit:  calendar.Limit{Count: rec.LimitCount, Until: derefTime(rec.LimitDate)},
		Active: active,
	})
	if err != nil {
		return nil, err
	}
	if got := partitionOf(e); got != rec.Partition {
		return nil, fmt.Errorf("stored in %s but is a %s", rec.Partition, e.Kind())
	}
	return e, nil
}

func validateRecord(rec persistence.EntryRecord) (*calendar.Entry, *ValidationError) {
	e, err := fromRecord(rec)
	if err == nil {
		return e, nil
	}
	vErr := &ValidationError{}
	vErr.add(fmt.Sprintf("entry %d", rec.ID), err.Error())
	return nil, vErr
}

func mapEntryRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) || errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("entries", err.Error())
		return fmt.Errorf("%w: %w", ErrStorage, vErr)
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

package testfixtures

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/persistence"
)

var (
	entryCounter   uint64
	journalCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Tuesday.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Entry records -----------------------------

// EntryRecordOption configures a generated entry record.
type EntryRecordOption func(*persistence.EntryRecord)

// NewEntryRecord returns a floating active task record with a fresh ID.
func NewEntryRecord(opts ...EntryRecordOption) persistence.EntryRecord {
	idx := atomic.AddUint64(&entryCounter, 1)
	record := persistence.EntryRecord{
		ID:        int(idx),
		Partition: persistence.PartitionActiveTasks,
		Name:      fmt.Sprintf("entry %03d", idx),
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

// WithEntryID overrides the generated ID.
func WithEntryID(id int) EntryRecordOption {
	return func(r *persistence.EntryRecord) {
		r.ID = id
	}
}

// WithEntryName overrides the generated name.
func WithEntryName(name string) EntryRecordOption {
	return func(r *persistence.EntryRecord) {
		r.Name = name
	}
}

// WithPartition moves the record to another partition.
func WithPartition(p persistence.Partition) EntryRecordOption {
	return func(r *persistence.EntryRecord) {
		r.Partition = p
	}
}

// WithEntryDeadline sets the end time of a task.
func WithEntryDeadline(end time.Time) EntryRecordOption {
	return func(r *persistence.EntryRecord) {
		r.End = &end
	}
}

// WithEntrySpan sets start and end and files the record as an active event.
func WithEntrySpan(start, end time.Time) EntryRecordOption {
	return func(r *persistence.EntryRecord) {
		r.Start = &start
		r.End = &end
		r.Partition = persistence.PartitionActiveEvents
	}
}

// WithEntryPeriod sets the recurrence period.
func WithEntryPeriod(p calendar.Period) EntryRecordOption {
	return func(r *persistence.EntryRecord) {
		r.PeriodYears = p.Years
		r.PeriodMonths = p.Months
		r.PeriodDays = p.Days
		r.PeriodClock = p.Clock
	}
}

// WithLimitCount bounds the recurrence by occurrences.
func WithLimitCount(n int) EntryRecordOption {
	return func(r *persistence.EntryRecord) {
		r.LimitCount = n
	}
}

// WithLimitDate bounds the recurrence by date.
func WithLimitDate(date time.Time) EntryRecordOption {
	return func(r *persistence.EntryRecord) {
		r.LimitDate = &date
	}
}

// ----------------------------- Journal records -----------------------------

// JournalRecordOption configures a generated journal record.
type JournalRecordOption func(*persistence.JournalRecord)

// NewJournalRecord returns an "add" record stamped one minute after the
// previous one.
func NewJournalRecord(opts ...JournalRecordOption) persistence.JournalRecord {
	idx := atomic.AddUint64(&journalCounter, 1)
	record := persistence.JournalRecord{
		ID:         fmt.Sprintf("journal-%03d", idx),
		Verb:       "add",
		Comment:    fmt.Sprintf("added entry %d", idx),
		RecordedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

// WithJournalID overrides the generated ID.
func WithJournalID(id string) JournalRecordOption {
	return func(r *persistence.JournalRecord) {
		r.ID = id
	}
}

// WithJournalVerb overrides the verb.
func WithJournalVerb(verb string) JournalRecordOption {
	return func(r *persistence.JournalRecord) {
		r.Verb = verb
	}
}

// WithJournalUndo marks the record as an undo.
func WithJournalUndo() JournalRecordOption {
	return func(r *persistence.JournalRecord) {
		r.Undo = true
	}
}

// WithJournalTime overrides the timestamp.
func WithJournalTime(t time.Time) JournalRecordOption {
	return func(r *persistence.JournalRecord) {
		r.RecordedAt = t
	}
}

// ----------------------------- Calendars -----------------------------

// Seed IDs of the entries created by NewSeededList.
const (
	SeedFloatingID       = 1
	SeedDeadlineID       = 2
	SeedRecurringTaskID  = 3
	SeedEventID          = 4
	SeedRecurringEventID = 5
)

// NewSeededList returns a list holding one entry of each kind, relative to
// ReferenceTime:
//
//	1 "read a book"   floating task
//	2 "report"        due today 17:00
//	3 "water plants"  due daily at 08:00 from tomorrow
//	4 "dentist"       tomorrow 10:00-11:00
//	5 "gym"           tomorrow 18:00-19:00, weekly, 4 times
func NewSeededList(tb testing.TB, now func() time.Time) *calendar.List {
	tb.Helper()
	if now == nil {
		now = ReferenceTime
	}
	list := calendar.NewList(now)
	day := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	tomorrow := day.AddDate(0, 0, 1)

	must := func(_ *calendar.Entry, err error) {
		tb.Helper()
		if err != nil {
			tb.Fatalf("failed to seed list: %v", err)
		}
	}
	must(list.AddFloating("read a book"))
	must(list.AddDeadline("report", day.Add(17*time.Hour)))
	must(list.AddRecurringTask("water plants", tomorrow.Add(8*time.Hour), calendar.Days(1), calendar.NoLimit))
	must(list.AddEvent("dentist", tomorrow.Add(10*time.Hour), tomorrow.Add(11*time.Hour)))
	must(list.AddRecurringEvent("gym", tomorrow.Add(18*time.Hour), tomorrow.Add(19*time.Hour), calendar.Weeks(1), calendar.LimitCount(4)))
	return list
}

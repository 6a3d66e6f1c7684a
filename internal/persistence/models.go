package persistence

import "time"

// Partition names one of the four collections an entry lives in.
type Partition string

const (
	PartitionActiveTasks    Partition = "active_tasks"
	PartitionActiveEvents   Partition = "active_events"
	PartitionArchivedTasks  Partition = "archived_tasks"
	PartitionArchivedEvents Partition = "archived_events"
)

// Valid reports whether p is a known partition.
func (p Partition) Valid() bool {
	switch p {
	case PartitionActiveTasks, PartitionActiveEvents, PartitionArchivedTasks, PartitionArchivedEvents:
		return true
	default:
		return false
	}
}

// EntryRecord is the stored form of a calendar entry.
type EntryRecord struct {
	ID           int
	Partition    Partition
	Name         string
	Start        *time.Time
	End          *time.Time
	PeriodYears  int
	PeriodMonths int
	PeriodDays   int
	PeriodClock  time.Duration
	LimitCount   int
	LimitDate    *time.Time
	UpdatedAt    time.Time
}

// Validate checks the rules every store enforces.
func (r EntryRecord) Validate() error {
	if r.ID <= 0 || !r.Partition.Valid() || r.Name == "" {
		return ErrConstraintViolation
	}
	if r.LimitCount < 0 || (r.LimitCount > 0 && r.LimitDate != nil) {
		return ErrConstraintViolation
	}
	return nil
}

// JournalRecord is one executed or undone command.
type JournalRecord struct {
	ID         string
	Verb       string
	Comment    string
	Undo       bool
	EntryID    int
	RecordedAt time.Time
}

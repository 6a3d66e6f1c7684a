// Package memory keeps tracker records in process memory. It backs tests
// and sessions started without a database file.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/lifetracker/internal/persistence"
)

// Storage is a map-based implementation of the persistence repositories.
type Storage struct {
	mu      sync.RWMutex
	entries map[int]persistence.EntryRecord
	journal []persistence.JournalRecord
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{entries: make(map[int]persistence.EntryRecord)}
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// Migrate is a no-op.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// --- EntryRepository implementation ---

// ListEntries returns all records ordered by partition, then ID.
func (s *Storage) ListEntries(ctx context.Context) ([]persistence.EntryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]persistence.EntryRecord, 0, len(s.entries))
	for _, record := range s.entries {
		records = append(records, cloneEntry(record))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Partition != records[j].Partition {
			return records[i].Partition < records[j].Partition
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// ReplaceEntries swaps the stored set. Nothing changes when any record is
// invalid or two records share an ID.
func (s *Storage) ReplaceEntries(ctx context.Context, records []persistence.EntryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	next := make(map[int]persistence.EntryRecord, len(records))
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("memory: entry %d: %w", record.ID, err)
		}
		if _, ok := next[record.ID]; ok {
			return fmt.Errorf("memory: entry %d: %w", record.ID, persistence.ErrDuplicate)
		}
		next[record.ID] = cloneEntry(record)
	}

	s.mu.Lock()
	s.entries = next
	s.mu.Unlock()
	return nil
}

// --- JournalRepository implementation ---

// AppendJournal records one command.
func (s *Storage) AppendJournal(ctx context.Context, record persistence.JournalRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.ID == "" || record.Verb == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.journal {
		if existing.ID == record.ID {
			return persistence.ErrDuplicate
		}
	}
	s.journal = append(s.journal, record)
	return nil
}

// ListJournal returns up to limit records, newest first.
func (s *Storage) ListJournal(ctx context.Context, limit int) ([]persistence.JournalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.journal)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]persistence.JournalRecord, 0, n)
	for i := len(s.journal) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.journal[i])
	}
	return out, nil
}

func cloneEntry(record persistence.EntryRecord) persistence.EntryRecord {
	record.Start = cloneTime(record.Start)
	record.End = cloneTime(record.End)
	record.LimitDate = cloneTime(record.LimitDate)
	return record
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copy := *t
	return &copy
}

package persistence

import "context"

// EntryRepository stores the whole calendar as a set of entry records.
type EntryRepository interface {
	// ListEntries returns every record ordered by partition, then ID.
	ListEntries(ctx context.Context) ([]EntryRecord, error)
	// ReplaceEntries atomically swaps the stored set for records.
	ReplaceEntries(ctx context.Context, records []EntryRecord) error
}

// JournalRepository keeps an append-only log of commands.
type JournalRepository interface {
	AppendJournal(ctx context.Context, record JournalRecord) error
	// ListJournal returns up to limit records, newest first. A limit of
	// zero or less returns everything.
	ListJournal(ctx context.Context, limit int) ([]JournalRecord, error)
}

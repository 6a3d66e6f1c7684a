package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lifetracker/internal/persistence"
)

// JournalRepository implements persistence.JournalRepository using SQLite.
type JournalRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewJournalRepository creates a new SQLite journal repository.
func NewJournalRepository(pool *ConnectionPool) *JournalRepository {
	return &JournalRepository{pool: pool, mapper: NewErrorMapper()}
}

// AppendJournal inserts one record.
func (r *JournalRepository) AppendJournal(ctx context.Context, record persistence.JournalRecord) error {
	if record.ID == "" || record.Verb == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO journal (id, verb, comment, is_undo, entry_id, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.DB().ExecContext(ctx, query,
		record.ID,
		record.Verb,
		record.Comment,
		record.Undo,
		record.EntryID,
		record.RecordedAt.UTC().Format(timeLayout),
	)
	return r.mapper.MapError(err)
}

// ListJournal returns up to limit records, newest first.
func (r *JournalRepository) ListJournal(ctx context.Context, limit int) ([]persistence.JournalRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, verb, comment, is_undo, entry_id, recorded_at
		FROM journal
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.pool.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var records []persistence.JournalRecord
	for rows.Next() {
		var (
			record     persistence.JournalRecord
			recordedAt string
		)
		if err := rows.Scan(&record.ID, &record.Verb, &record.Comment, &record.Undo, &record.EntryID, &recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan journal: %w", err)
		}
		if record.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: journal %s recorded_at: %w", record.ID, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return records, nil
}

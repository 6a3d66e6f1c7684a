package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/lifetracker/internal/persistence"
)

// timeLayout keeps a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// EntryRepository implements persistence.EntryRepository using SQLite.
type EntryRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewEntryRepository creates a new SQLite entry repository.
func NewEntryRepository(pool *ConnectionPool) *EntryRepository {
	return &EntryRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// ListEntries returns all records ordered by partition, then ID.
func (r *EntryRepository) ListEntries(ctx context.Context) ([]persistence.EntryRecord, error) {
	query := `
		SELECT id, partition, name, start_at, end_at,
			period_years, period_months, period_days, period_clock_ns,
			limit_count, limit_date, updated_at
		FROM entries
		ORDER BY partition ASC, id ASC
	`

	rows, err := r.pool.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var records []persistence.EntryRecord
	for rows.Next() {
		record, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return records, nil
}

// ReplaceEntries swaps the stored set inside one transaction, retrying
// while the database is locked.
func (r *EntryRepository) ReplaceEntries(ctx context.Context, records []persistence.EntryRecord) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("sqlite: entry %d: %w", record.ID, err)
		}
	}

	insert := `
		INSERT INTO entries (
			id, partition, name, start_at, end_at,
			period_years, period_months, period_days, period_clock_ns,
			limit_count, limit_date, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
				return err
			}
			stmt, err := tx.PrepareContext(ctx, insert)
			if err != nil {
				return err
			}
			defer stmt.Close()

			for _, record := range records {
				if _, err := stmt.ExecContext(ctx,
					record.ID,
					string(record.Partition),
					record.Name,
					formatTime(record.Start),
					formatTime(record.End),
					record.PeriodYears,
					record.PeriodMonths,
					record.PeriodDays,
					int64(record.PeriodClock),
					record.LimitCount,
					formatTime(record.LimitDate),
					record.UpdatedAt.UTC().Format(timeLayout),
				); err != nil {
					return fmt.Errorf("entry %d: %w", record.ID, err)
				}
			}
			return nil
		})
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (persistence.EntryRecord, error) {
	var (
		record            persistence.EntryRecord
		partition         string
		start, end, limit sql.NullString
		clock             int64
		updatedAt         string
	)
	if err := row.Scan(
		&record.ID,
		&partition,
		&record.Name,
		&start,
		&end,
		&record.PeriodYears,
		&record.PeriodMonths,
		&record.PeriodDays,
		&clock,
		&record.LimitCount,
		&limit,
		&updatedAt,
	); err != nil {
		return persistence.EntryRecord{}, fmt.Errorf("sqlite: scan entry: %w", err)
	}

	record.Partition = persistence.Partition(partition)
	record.PeriodClock = time.Duration(clock)

	var err error
	if record.Start, err = parseTime(start); err != nil {
		return persistence.EntryRecord{}, fmt.Errorf("sqlite: entry %d start: %w", record.ID, err)
	}
	if record.End, err = parseTime(end); err != nil {
		return persistence.EntryRecord{}, fmt.Errorf("sqlite: entry %d end: %w", record.ID, err)
	}
	if record.LimitDate, err = parseTime(limit); err != nil {
		return persistence.EntryRecord{}, fmt.Errorf("sqlite: entry %d limit: %w", record.ID, err)
	}
	if record.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return persistence.EntryRecord{}, fmt.Errorf("sqlite: entry %d updated_at: %w", record.ID, err)
	}
	return record, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

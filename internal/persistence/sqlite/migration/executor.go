package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const versionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL,
	checksum TEXT NOT NULL DEFAULT '',
	execution_time_ms INTEGER NOT NULL DEFAULT 0
)`

// Executor runs migrations against a database.
type Executor struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewExecutor builds an Executor. A nil logger discards output.
func NewExecutor(db *sql.DB, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{db: db, logger: logger, now: time.Now}
}

// EnsureVersionTable creates schema_migrations when missing.
func (e *Executor) EnsureVersionTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, versionTableSQL); err != nil {
		return newError(0, "schema_migrations", "create version table", err)
	}
	return nil
}

// Apply runs every statement of m and records it, all in one transaction.
func (e *Executor) Apply(ctx context.Context, m Migration) (err error) {
	started := e.now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return newError(m.Version, m.Name, "begin transaction", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			e.logger.Error("migration rollback failed", "version", m.Version, "error", rbErr)
		}
	}()

	for i, stmt := range splitStatements(m.SQL) {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			return newError(m.Version, m.Name, fmt.Sprintf("execute statement %d", i+1),
				fmt.Errorf("%w: %v", ErrMigrationFailed, execErr))
		}
	}

	elapsed := e.now().Sub(started)
	if _, execErr := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`,
		m.Version, e.now().UTC().Format(time.RFC3339Nano), m.Checksum, elapsed.Milliseconds(),
	); execErr != nil {
		return newError(m.Version, m.Name, "record migration", execErr)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return newError(m.Version, m.Name, "commit transaction", commitErr)
	}
	e.logger.Info("migration applied", "version", m.Version, "description", m.Description, "duration", elapsed)
	return nil
}

// Applied lists the rows of schema_migrations by version.
func (e *Executor) Applied(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT version, applied_at, checksum, execution_time_ms FROM schema_migrations ORDER BY version ASC`)
	if err != nil {
		return nil, newError(0, "schema_migrations", "list applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			row       AppliedMigration
			appliedAt string
			millis    int64
		)
		if err := rows.Scan(&row.Version, &appliedAt, &row.Checksum, &millis); err != nil {
			return nil, newError(0, "schema_migrations", "scan applied version", err)
		}
		row.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt)
		if err != nil {
			return nil, newError(row.Version, "schema_migrations", "parse applied_at", err)
		}
		row.ExecutionTime = time.Duration(millis) * time.Millisecond
		applied = append(applied, row)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(0, "schema_migrations", "iterate applied versions", err)
	}
	return applied, nil
}

package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io"
	"log/slog"

	"github.com/example/lifetracker/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage bundles the SQLite-backed repositories over one connection pool.
type Storage struct {
	*EntryRepository
	*JournalRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

// Open returns a Storage for the database at dsn. Use migration.MemoryDSN
// for a throwaway database.
func Open(dsn string) (*Storage, error) {
	cfg := migration.DefaultSQLiteConfig(dsn)
	if dsn == migration.MemoryDSN {
		cfg = migration.InMemorySQLiteConfig()
	}
	return OpenWithConfig(context.Background(), cfg, nil)
}

// OpenWithConfig returns a Storage using cfg. A nil logger discards output.
func OpenWithConfig(ctx context.Context, cfg migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return &Storage{
		EntryRepository:   NewEntryRepository(pool),
		JournalRepository: NewJournalRepository(pool),
		pool:              pool,
		logger:            logger.With("component", "sqlite"),
	}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	executor := migration.NewExecutor(s.pool.DB(), s.logger)
	manager := migration.NewManager(executor, migrationFiles, "migrations", s.logger)
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

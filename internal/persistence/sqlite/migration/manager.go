package migration

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
)

// Manager decides which migrations are pending and applies them in order.
type Manager struct {
	executor *Executor
	fsys     fs.FS
	dir      string
	logger   *slog.Logger
}

// NewManager builds a Manager reading files from dir of fsys.
func NewManager(executor *Executor, fsys fs.FS, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{executor: executor, fsys: fsys, dir: dir, logger: logger}
}

// Run applies every pending migration and stops at the first failure.
func (m *Manager) Run(ctx context.Context) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if len(status.Pending) == 0 {
		m.logger.Debug("schema up to date", "version", status.CurrentVersion)
		return nil
	}

	m.logger.Info("applying migrations", "from_version", status.CurrentVersion, "pending", len(status.Pending))
	for _, migration := range status.Pending {
		if err := m.executor.Apply(ctx, migration); err != nil {
			m.logger.Error("migration failed", "version", migration.Version, "file", migration.Name, "error", err)
			return err
		}
	}
	return nil
}

// Status compares the files with the version table.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.EnsureVersionTable(ctx); err != nil {
		return Status{}, err
	}
	available, err := Scan(m.fsys, m.dir)
	if err != nil {
		return Status{}, err
	}
	applied, err := m.executor.Applied(ctx)
	if err != nil {
		return Status{}, err
	}
	if err := validateSequence(available, applied); err != nil {
		return Status{}, err
	}

	done := make(map[int]bool, len(applied))
	status := Status{Applied: applied}
	for _, row := range applied {
		done[row.Version] = true
		if row.Version > status.CurrentVersion {
			status.CurrentVersion = row.Version
		}
	}
	for _, migration := range available {
		if !done[migration.Version] {
			status.Pending = append(status.Pending, migration)
		}
	}
	return status, nil
}

// validateSequence rejects gaps in the files, applied versions without a
// file, and applied files whose content changed.
func validateSequence(available []Migration, applied []AppliedMigration) error {
	files := make(map[int]Migration, len(available))
	for i, migration := range available {
		files[migration.Version] = migration
		if i > 0 && migration.Version != available[i-1].Version+1 {
			return fmt.Errorf("%w: missing version %03d", ErrVersionConflict, available[i-1].Version+1)
		}
	}
	for _, row := range applied {
		file, ok := files[row.Version]
		if !ok {
			return fmt.Errorf("%w: applied version %03d has no file", ErrVersionConflict, row.Version)
		}
		if row.Checksum != "" && row.Checksum != file.Checksum {
			return newError(row.Version, file.Name, "verify checksum", ErrChecksumMismatch)
		}
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ndalama/internal/common"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS goals (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					target TEXT NOT NULL,
					created_at INTEGER NOT NULL,
					target_date INTEGER NOT NULL,
					is_priority BOOLEAN NOT NULL DEFAULT 0,
					is_private BOOLEAN NOT NULL DEFAULT 0,
					frequency TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'active'
				)`,
				// goal_id is a weak reference: no foreign key, no cascade.
				`CREATE TABLE IF NOT EXISTS contributions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					goal_id INTEGER NOT NULL,
					amount TEXT NOT NULL,
					type TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					source TEXT NOT NULL DEFAULT '',
					date INTEGER NOT NULL
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add goal type and purpose",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE goals ADD COLUMN goal_type TEXT NOT NULL DEFAULT 'SAVINGS'`,
				`ALTER TABLE goals ADD COLUMN purpose TEXT NOT NULL DEFAULT ''`,
			)
		},
	},
	{
		Version:     3,
		Description: "Index contributions by goal and date",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_contributions_goal_date ON contributions(goal_id, date)`,
				`CREATE INDEX IF NOT EXISTS idx_goals_status ON goals(status)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// SchemaVersion returns the current PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("%w: schema version mismatch: expected %d, got %d", common.ErrDatabaseCorrupted, ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/ndalama/internal/service"
)

// Snapshot reads the complete record set in one read transaction.
func (s *SQLiteStorage) Snapshot(ctx context.Context) (service.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return service.Snapshot{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return service.Snapshot{}, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	goals, err := listGoals(ctx, tx)
	if err != nil {
		return service.Snapshot{}, err
	}
	contributions, err := queryContributions(ctx, tx,
		`SELECT `+contributionColumns+` FROM contributions ORDER BY id DESC`)
	if err != nil {
		return service.Snapshot{}, err
	}

	return service.Snapshot{Goals: goals, Contributions: contributions}, nil
}

// Counts returns the number of stored goals and contributions.
func (s *SQLiteStorage) Counts(ctx context.Context) (service.RecordCounts, error) {
	if err := validateContext(ctx); err != nil {
		return service.RecordCounts{}, err
	}
	return countRecords(ctx, s.db)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func countRecords(ctx context.Context, q rowQuerier) (service.RecordCounts, error) {
	var counts service.RecordCounts
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM goals`).Scan(&counts.Goals); err != nil {
		return counts, fmt.Errorf("failed to count goals: %w", err)
	}
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM contributions`).Scan(&counts.Contributions); err != nil {
		return counts, fmt.Errorf("failed to count contributions: %w", err)
	}
	return counts, nil
}

// WipeAll deletes every goal and contribution. Nothing is deleted on failure.
func (s *SQLiteStorage) WipeAll(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		goals, err := tx.ExecContext(ctx, `DELETE FROM goals`)
		if err != nil {
			return fmt.Errorf("failed to delete goals: %w", err)
		}
		contributions, err := tx.ExecContext(ctx, `DELETE FROM contributions`)
		if err != nil {
			return fmt.Errorf("failed to delete contributions: %w", err)
		}

		goalCount, _ := goals.RowsAffected()
		contributionCount, _ := contributions.RowsAffected()
		slog.Info("wiped all records", "goals", goalCount, "contributions", contributionCount)
		return nil
	})
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/shopspring/decimal"
)

const contributionColumns = `id, goal_id, amount, type, description, source, date`

func scanContribution(row rowScanner) (*model.Contribution, error) {
	var (
		c      model.Contribution
		amount string
		date   int64
	)
	if err := row.Scan(&c.ID, &c.GoalID, &amount, &c.Type, &c.Description, &c.Source, &date); err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("contribution %d has malformed amount %q: %w", c.ID, amount, err)
	}
	c.Amount = value
	c.Date = fromMillis(date)
	return &c, nil
}

// AddContribution records a deposit and sets its ID.
// The referenced goal is not required to exist.
func (s *SQLiteStorage) AddContribution(ctx context.Context, c *model.Contribution) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateContribution(c); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := insertContribution(ctx, tx, c)
		if err != nil {
			return err
		}
		c.ID = id
		slog.Debug("added contribution", "id", id, "goal_id", c.GoalID, "amount", c.Amount.String())
		return nil
	})
}

// AddContributions records several deposits in one transaction.
func (s *SQLiteStorage) AddContributions(ctx context.Context, contributions []model.Contribution) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range contributions {
		if err := validateContribution(&contributions[i]); err != nil {
			return fmt.Errorf("contribution at index %d: %w", i, err)
		}
	}
	if len(contributions) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range contributions {
			id, err := insertContribution(ctx, tx, &contributions[i])
			if err != nil {
				return err
			}
			contributions[i].ID = id
		}
		slog.Info("added contributions", "count", len(contributions))
		return nil
	})
}

func insertContribution(ctx context.Context, tx *sql.Tx, c *model.Contribution) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO contributions (goal_id, amount, type, description, source, date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.GoalID, c.Amount.String(), c.Type, c.Description, c.Source, toMillis(c.Date),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contribution: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get contribution ID: %w", err)
	}
	return id, nil
}

// ListContributions returns every contribution, newest first.
func (s *SQLiteStorage) ListContributions(ctx context.Context) ([]model.Contribution, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return queryContributions(ctx, s.db, `SELECT `+contributionColumns+` FROM contributions ORDER BY id DESC`)
}

// ListContributionsForGoal returns the contributions of one goal ordered by date.
func (s *SQLiteStorage) ListContributionsForGoal(ctx context.Context, goalID int64) ([]model.Contribution, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(goalID); err != nil {
		return nil, err
	}
	return queryContributions(ctx, s.db,
		`SELECT `+contributionColumns+` FROM contributions WHERE goal_id = ? ORDER BY date, id`, goalID)
}

func queryContributions(ctx context.Context, q querier, query string, args ...any) ([]model.Contribution, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	var contributions []model.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contributions: %w", err)
	}

	return contributions, nil
}

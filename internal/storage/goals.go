package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/shopspring/decimal"
)

const goalColumns = `id, name, description, purpose, target, created_at, target_date,
	is_priority, is_private, frequency, status, goal_type`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*model.Goal, error) {
	var (
		g                   model.Goal
		target              string
		createdAt, targetAt int64
		frequency, status   string
		goalType            string
	)
	if err := row.Scan(
		&g.ID, &g.Name, &g.Description, &g.Purpose, &target, &createdAt, &targetAt,
		&g.IsPriority, &g.IsPrivate, &frequency, &status, &goalType,
	); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(target)
	if err != nil {
		return nil, fmt.Errorf("goal %d has malformed target %q: %w", g.ID, target, err)
	}
	g.Target = amount
	g.CreatedAt = fromMillis(createdAt)
	g.TargetDate = fromMillis(targetAt)
	g.Frequency = model.Frequency(frequency)
	g.Status = model.GoalStatus(status)
	g.Type = model.GoalType(goalType)
	return &g, nil
}

// CreateGoal inserts a new goal and sets its ID.
// Empty status and type default to active savings.
func (s *SQLiteStorage) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}
	if goal.Status == "" {
		goal.Status = model.GoalStatusActive
	}
	if goal.Type == "" {
		goal.Type = model.GoalTypeSavings
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO goals (name, description, purpose, target, created_at, target_date,
				is_priority, is_private, frequency, status, goal_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			goal.Name, goal.Description, goal.Purpose, goal.Target.String(),
			toMillis(goal.CreatedAt), toMillis(goal.TargetDate),
			goal.IsPriority, goal.IsPrivate, string(goal.Frequency),
			string(goal.Status), string(goal.Type),
		)
		if err != nil {
			return fmt.Errorf("failed to create goal: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get goal ID: %w", err)
		}
		goal.ID = id

		slog.Info("created goal", "id", id, "name", goal.Name)
		return nil
	})
}

// GetGoal returns the goal with the given id.
func (s *SQLiteStorage) GetGoal(ctx context.Context, id int64) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrGoalNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return goal, nil
}

// ListGoals returns all goals, newest first.
func (s *SQLiteStorage) ListGoals(ctx context.Context) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listGoals(ctx, s.db)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listGoals(ctx context.Context, q querier) ([]model.Goal, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}

	return goals, nil
}

// UpdateGoal overwrites every editable field of an existing goal.
func (s *SQLiteStorage) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}
	if err := validateID(goal.ID); err != nil {
		return err
	}
	if goal.Status == "" {
		goal.Status = model.GoalStatusActive
	}
	if goal.Type == "" {
		goal.Type = model.GoalTypeSavings
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE goals
			SET name = ?, description = ?, purpose = ?, target = ?, created_at = ?, target_date = ?,
				is_priority = ?, is_private = ?, frequency = ?, status = ?, goal_type = ?
			WHERE id = ?`,
			goal.Name, goal.Description, goal.Purpose, goal.Target.String(),
			toMillis(goal.CreatedAt), toMillis(goal.TargetDate),
			goal.IsPriority, goal.IsPrivate, string(goal.Frequency),
			string(goal.Status), string(goal.Type), goal.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}
		return requireAffected(result, goal.ID)
	})
}

// SetGoalStatus moves a goal to another lifecycle state.
func (s *SQLiteStorage) SetGoalStatus(ctx context.Context, id int64, status model.GoalStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE goals SET status = ? WHERE id = ?`, string(status), id)
		if err != nil {
			return fmt.Errorf("failed to update goal status: %w", err)
		}
		if err := requireAffected(result, id); err != nil {
			return err
		}
		slog.Debug("goal status changed", "id", id, "status", status)
		return nil
	})
}

// PauseGoal marks a goal paused.
func (s *SQLiteStorage) PauseGoal(ctx context.Context, id int64) error {
	return s.SetGoalStatus(ctx, id, model.GoalStatusPaused)
}

// CompleteGoal marks a goal completed.
func (s *SQLiteStorage) CompleteGoal(ctx context.Context, id int64) error {
	return s.SetGoalStatus(ctx, id, model.GoalStatusCompleted)
}

// ActivateGoal marks a goal active again.
func (s *SQLiteStorage) ActivateGoal(ctx context.Context, id int64) error {
	return s.SetGoalStatus(ctx, id, model.GoalStatusActive)
}

func requireAffected(result sql.Result, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", ErrGoalNotFound, id)
	}
	return nil
}

// Package storage provides the data persistence layer for goals and contributions.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/ndalama/internal/common"
	"github.com/Veraticus/ndalama/internal/model"
)

// Validation errors.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = errors.New("string parameter cannot be empty")
	ErrNilParameter        = errors.New("parameter cannot be nil")
	ErrInvalidID           = errors.New("id must be positive")
	ErrInvalidGoal         = errors.New("invalid goal")
	ErrInvalidContribution = errors.New("invalid contribution")
	ErrInvalidStatus       = errors.New("invalid goal status")
	ErrStorageClosed       = errors.New("storage is closed")
)

// ErrGoalNotFound is returned when no goal has the requested id.
var ErrGoalNotFound = fmt.Errorf("goal %w", common.ErrNotFound)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return nil
}

func validateGoal(goal *model.Goal) error {
	if goal == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGoal, err)
	}
	if goal.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation date", ErrInvalidGoal)
	}
	if goal.Status != "" && !goal.Status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, goal.Status)
	}
	return nil
}

func validateContribution(c *model.Contribution) error {
	if c == nil {
		return fmt.Errorf("%w: contribution", ErrNilParameter)
	}
	if err := validateID(c.GoalID); err != nil {
		return fmt.Errorf("%w: goal id: %w", ErrInvalidContribution, err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContribution, err)
	}
	if c.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidContribution)
	}
	return nil
}

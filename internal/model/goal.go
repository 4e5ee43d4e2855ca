// Package model defines the core records of the goals tracker.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	// GoalStatusActive is the state of a newly created goal.
	GoalStatusActive GoalStatus = "active"
	// GoalStatusPaused marks a goal the user stopped contributing to.
	GoalStatusPaused GoalStatus = "paused"
	// GoalStatusCompleted marks a goal the user closed out.
	GoalStatusCompleted GoalStatus = "completed"
)

// Valid reports whether s is a known lifecycle state.
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusActive, GoalStatusPaused, GoalStatusCompleted:
		return true
	}
	return false
}

// GoalType tags a goal as plain savings or an investment target.
type GoalType string

const (
	// GoalTypeSavings is the default goal type.
	GoalTypeSavings GoalType = "SAVINGS"
	// GoalTypeInvestment marks money that is meant to be invested.
	GoalTypeInvestment GoalType = "INVESTMENT"
)

// ParseGoalType accepts either case and defaults to savings for empty input.
func ParseGoalType(s string) (GoalType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(GoalTypeSavings):
		return GoalTypeSavings, nil
	case string(GoalTypeInvestment):
		return GoalTypeInvestment, nil
	}
	return "", fmt.Errorf("unknown goal type %q", s)
}

// Goal errors.
var (
	ErrGoalName   = errors.New("goal name is required")
	ErrGoalTarget = errors.New("goal target cannot be negative")
)

// Goal is a named savings target with a deadline and contribution cadence.
type Goal struct {
	CreatedAt   time.Time
	TargetDate  time.Time
	Target      decimal.Decimal
	Name        string
	Description string
	Purpose     string
	Frequency   Frequency
	Status      GoalStatus
	Type        GoalType
	ID          int64
	IsPriority  bool
	IsPrivate   bool
}

// Validate checks the fields a goal cannot be stored without.
// An inverted timeline is allowed; pacing reports it as invalid instead.
func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrGoalName
	}
	if g.Target.IsNegative() {
		return ErrGoalTarget
	}
	return nil
}

// HasValidTimeline reports whether the target date lies after the start.
func (g *Goal) HasValidTimeline() bool {
	return g.TargetDate.After(g.CreatedAt)
}

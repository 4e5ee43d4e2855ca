package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNegativeAmount is returned for contributions below zero.
var ErrNegativeAmount = errors.New("contribution amount cannot be negative")

// Contribution is a single dated deposit toward a goal.
// The goal reference is weak: a contribution may outlive its goal.
type Contribution struct {
	Date        time.Time
	Amount      decimal.Decimal
	Type        string
	Description string
	Source      string
	ID          int64
	GoalID      int64
}

// Validate checks the contribution can be stored.
func (c *Contribution) Validate() error {
	if c.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

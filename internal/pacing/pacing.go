// Package pacing compares what a goal has saved against what a linear
// schedule says it should have saved by now.
//
// Everything here is pure: callers pass the reference time explicitly and
// every degenerate input resolves to a defined result instead of an error.
package pacing

import (
	"time"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/shopspring/decimal"
)

// Status is the qualitative pacing label shown next to a goal.
type Status string

// Pacing labels, in precedence order.
const (
	StatusCompleted           Status = "Completed"
	StatusOnTrack             Status = "On Track"
	StatusSlightlyBehind      Status = "Slightly Behind"
	StatusBehind              Status = "Behind"
	StatusSignificantlyBehind Status = "Significantly Behind"
	StatusInvalidTimeline     Status = "Invalid timeline"
)

var (
	slightlyBehindRatio = decimal.RequireFromString("0.8")
	behindRatio         = decimal.RequireFromString("0.5")
)

const day = 24 * time.Hour

// Result is the pacing signal for one goal.
type Result struct {
	Saved    decimal.Decimal
	Expected decimal.Decimal
	Status   Status
	Progress float64 // saved / target, clamped to [0, 1]
}

// Shortfall returns how far savings trail the expected amount, never negative.
func (r Result) Shortfall() decimal.Decimal {
	gap := r.Expected.Sub(r.Saved)
	if gap.IsNegative() {
		return decimal.Zero
	}
	return gap
}

// Calculate derives the pacing result of goal from its contributions at now.
// Contributions are summed as given; callers filter them to the goal.
func Calculate(goal model.Goal, contributions []model.Contribution, now time.Time) Result {
	saved := Sum(contributions)

	totalDays := daysBetween(goal.CreatedAt, goal.TargetDate)
	if totalDays <= 0 {
		return Result{
			Saved:    saved,
			Expected: decimal.Zero,
			Status:   StatusInvalidTimeline,
		}
	}

	elapsedDays := daysBetween(goal.CreatedAt, now)
	if elapsedDays < 0 {
		elapsedDays = 0
	}

	periodDays := int64(goal.Frequency.PeriodDays())
	totalPeriods := max(1, totalDays/periodDays)
	elapsedPeriods := max(0, elapsedDays/periodDays)

	// Multiply before dividing so whole-period results stay exact.
	expected := goal.Target.Mul(decimal.NewFromInt(elapsedPeriods)).Div(decimal.NewFromInt(totalPeriods))

	progress := Progress(saved, goal.Target)

	return Result{
		Saved:    saved,
		Expected: expected,
		Status:   classify(progress, saved, expected),
		Progress: progress,
	}
}

// Progress returns saved/target clamped to [0, 1]; zero for a zero target.
func Progress(saved, target decimal.Decimal) float64 {
	if !target.IsPositive() {
		return 0
	}
	if saved.GreaterThanOrEqual(target) {
		return 1
	}
	if !saved.IsPositive() {
		return 0
	}
	p := saved.Div(target).InexactFloat64()
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Sum adds up contribution amounts.
func Sum(contributions []model.Contribution) decimal.Decimal {
	total := decimal.Zero
	for _, c := range contributions {
		total = total.Add(c.Amount)
	}
	return total
}

func classify(progress float64, saved, expected decimal.Decimal) Status {
	switch {
	case progress >= 1:
		return StatusCompleted
	case saved.GreaterThanOrEqual(expected):
		return StatusOnTrack
	case saved.GreaterThanOrEqual(expected.Mul(slightlyBehindRatio)):
		return StatusSlightlyBehind
	case saved.GreaterThanOrEqual(expected.Mul(behindRatio)):
		return StatusBehind
	default:
		return StatusSignificantlyBehind
	}
}

// daysBetween counts whole days from a to b, truncating toward zero.
func daysBetween(a, b time.Time) int64 {
	return int64(b.Sub(a) / day)
}

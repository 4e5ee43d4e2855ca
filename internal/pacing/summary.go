package pacing

import (
	"time"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/shopspring/decimal"
)

// GoalProgress pairs a goal with its pacing result.
type GoalProgress struct {
	Result
	Goal          model.Goal
	Contributions int
}

// Summary is the pacing view of a whole record set.
type Summary struct {
	TotalSaved decimal.Decimal
	Goals      []GoalProgress
	Orphans    int // contributions whose goal no longer exists
}

// Summarize computes pacing for every goal in input order.
// Contributions that reference no known goal are counted but otherwise ignored.
func Summarize(goals []model.Goal, contributions []model.Contribution, now time.Time) Summary {
	byGoal := make(map[int64][]model.Contribution, len(goals))
	known := make(map[int64]struct{}, len(goals))
	for _, g := range goals {
		known[g.ID] = struct{}{}
	}

	summary := Summary{
		TotalSaved: decimal.Zero,
		Goals:      make([]GoalProgress, 0, len(goals)),
	}
	for _, c := range contributions {
		if _, ok := known[c.GoalID]; !ok {
			summary.Orphans++
			continue
		}
		byGoal[c.GoalID] = append(byGoal[c.GoalID], c)
	}

	for _, g := range goals {
		res := Calculate(g, byGoal[g.ID], now)
		summary.TotalSaved = summary.TotalSaved.Add(res.Saved)
		summary.Goals = append(summary.Goals, GoalProgress{
			Goal:          g,
			Result:        res,
			Contributions: len(byGoal[g.ID]),
		})
	}

	return summary
}

// Filter returns the summary restricted to goals accepted by keep, with
// TotalSaved recomputed over them. Orphans is carried over unchanged.
func (s Summary) Filter(keep func(GoalProgress) bool) Summary {
	out := Summary{
		TotalSaved: decimal.Zero,
		Goals:      make([]GoalProgress, 0, len(s.Goals)),
		Orphans:    s.Orphans,
	}
	for _, gp := range s.Goals {
		if keep(gp) {
			out.Goals = append(out.Goals, gp)
			out.TotalSaved = out.TotalSaved.Add(gp.Saved)
		}
	}
	return out
}

// Priority returns the first priority goal in the summary, if any.
func (s Summary) Priority() (GoalProgress, bool) {
	for _, gp := range s.Goals {
		if gp.Goal.IsPriority {
			return gp, true
		}
	}
	return GoalProgress{}, false
}

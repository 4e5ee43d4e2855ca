package pacing

import (
	"testing"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	laptop := monthlyGoal()
	trip := monthlyGoal()
	trip.ID = 2
	trip.Name = "Trip"
	trip.IsPriority = true

	list := []model.Contribution{
		{ID: 1, GoalID: 1, Amount: amount("1900")},
		{ID: 2, GoalID: 2, Amount: amount("100")},
		{ID: 3, GoalID: 2, Amount: amount("200")},
		{ID: 4, GoalID: 99, Amount: amount("5000")},
	}

	s := Summarize([]model.Goal{laptop, trip}, list, dayN(90))

	require.Len(t, s.Goals, 2)
	assert.Equal(t, "Laptop", s.Goals[0].Goal.Name)
	assert.Equal(t, StatusOnTrack, s.Goals[0].Status)
	assert.Equal(t, 1, s.Goals[0].Contributions)
	assert.Equal(t, StatusSignificantlyBehind, s.Goals[1].Status)
	assert.Equal(t, 2, s.Goals[1].Contributions)

	assert.Equal(t, 1, s.Orphans)
	assert.True(t, amount("2200").Equal(s.TotalSaved), "orphans are excluded from the total")

	p, ok := s.Priority()
	require.True(t, ok)
	assert.Equal(t, int64(2), p.Goal.ID)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, dayN(0))
	assert.Empty(t, s.Goals)
	assert.True(t, s.TotalSaved.IsZero())

	_, ok := s.Priority()
	assert.False(t, ok)
}

func TestSummary_Filter(t *testing.T) {
	laptop := monthlyGoal()
	trip := monthlyGoal()
	trip.ID = 2
	trip.Name = "Trip"
	trip.IsPriority = true
	trip.Status = model.GoalStatusPaused

	list := []model.Contribution{
		{ID: 1, GoalID: 1, Amount: amount("1900")},
		{ID: 2, GoalID: 2, Amount: amount("300")},
		{ID: 3, GoalID: 99, Amount: amount("5")},
	}
	s := Summarize([]model.Goal{laptop, trip}, list, dayN(90))

	active := s.Filter(func(gp GoalProgress) bool { return gp.Goal.Status != model.GoalStatusPaused })
	require.Len(t, active.Goals, 1)
	assert.Equal(t, "Laptop", active.Goals[0].Goal.Name)
	assert.True(t, amount("1900").Equal(active.TotalSaved))
	assert.Equal(t, 1, active.Orphans)
	_, ok := active.Priority()
	assert.False(t, ok, "priority goal was filtered out")

	none := s.Filter(func(GoalProgress) bool { return false })
	assert.Empty(t, none.Goals)
	assert.True(t, none.TotalSaved.IsZero())

	require.Len(t, s.Goals, 2, "filtering leaves the source summary intact")
}

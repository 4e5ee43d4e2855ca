package main

import (
	"context"
	"testing"

	"github.com/Veraticus/ndalama/internal/common"
	"github.com/Veraticus/ndalama/internal/model"
	"github.com/Veraticus/ndalama/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalsCreate(t *testing.T) {
	setupCommandTest(t)

	out, err := runCommand(t, goalsCmd(), "",
		"create", "Emergency fund",
		"--target", "6000",
		"--target-date", "2025-01-25",
		"--frequency", "Bi-weekly",
		"--purpose", "Peace of mind",
		"--priority")
	require.NoError(t, err)
	assert.Contains(t, out, "Created goal #1 Emergency fund")

	store, err := initStorage(context.Background())
	require.NoError(t, err)
	defer store.Close()

	goal, err := store.GetGoal(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "6000", goal.Target.String())
	assert.Equal(t, model.FrequencyBiWeekly, goal.Frequency)
	assert.Equal(t, model.GoalTypeSavings, goal.Type)
	assert.Equal(t, model.GoalStatusActive, goal.Status)
	assert.Equal(t, "Peace of mind", goal.Purpose)
	assert.True(t, goal.IsPriority)
	assert.Equal(t, "2024-03-31", goal.CreatedAt.UTC().Format(dateLayout))
}

func TestGoalsCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		message string
		args    []string
	}{
		{
			name:    "negative target",
			args:    []string{"create", "Car", "--target", "-5"},
			message: "target cannot be negative",
		},
		{
			name:    "bad date",
			args:    []string{"create", "Car", "--target", "5", "--target-date", "soon"},
			message: `invalid target date "soon"`,
		},
		{
			name:    "bad type",
			args:    []string{"create", "Car", "--target", "5", "--type", "crypto"},
			message: `unknown goal type "crypto"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCommandTest(t)

			_, err := runCommand(t, goalsCmd(), "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.message, common.UserMessage(err))
		})
	}
}

func TestGoalsList(t *testing.T) {
	setupSeededTest(t, testutil.EmergencyFund(), testutil.Holiday())

	out, err := runCommand(t, goalsCmd(), "", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Total saved: USD 1,200.00")
	assert.Contains(t, out, "Priority:")
	assert.Contains(t, out, "Emergency fund")
	assert.Contains(t, out, "Holiday")
	assert.Contains(t, out, "20%")
	assert.Contains(t, out, "USD 6,000.00")
	assert.Contains(t, out, "Due Oct 27, 2024")
	// 1200 saved against 1800 expected after three monthly periods.
	assert.Contains(t, out, "Behind")
	assert.NotContains(t, out, "Slightly Behind")
}

func TestGoalsListMasksPrivateGoals(t *testing.T) {
	secret := testutil.NewFixture("Surprise", "500", 60, model.FrequencyWeekly).Contribute("123.45", 3)
	secret.Goal.IsPrivate = true
	setupSeededTest(t, secret)

	out, err := runCommand(t, goalsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "****")
	assert.NotContains(t, out, "USD 500.00", "target is masked")
}

func TestGoalsListStatusFilter(t *testing.T) {
	db := setupSeededTest(t, testutil.EmergencyFund(), testutil.Holiday())
	require.NoError(t, db.Storage.PauseGoal(context.Background(), db.MustGoal("Holiday").ID))

	out, err := runCommand(t, goalsCmd(), "", "list", "--status", "paused")
	require.NoError(t, err)
	assert.Contains(t, out, "Holiday")
	assert.Contains(t, out, "Total saved: USD 0.00", "total covers only the listed goals")
	assert.NotContains(t, out, "Priority:")
	assert.NotContains(t, out, "Emergency fund")
}

func TestGoalsListEmpty(t *testing.T) {
	setupCommandTest(t)

	out, err := runCommand(t, goalsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No goals found.")
}

func TestGoalsShow(t *testing.T) {
	db := setupSeededTest(t, testutil.EmergencyFund())
	goal := db.MustGoal("Emergency fund")

	out, err := runCommand(t, goalsCmd(), "", "show", "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), goal.ID)

	assert.Contains(t, out, "Emergency fund")
	assert.Contains(t, out, "Monthly")
	assert.Contains(t, out, "USD 1,800.00", "expected amount")
	assert.Contains(t, out, "Behind by:")
	assert.Contains(t, out, "USD 600.00")
	assert.Contains(t, out, "2024-01-16", "first contribution date")
	assert.Contains(t, out, "2024-02-15")
}

func TestGoalsShowMissing(t *testing.T) {
	setupSeededTest(t, testutil.Holiday())

	_, err := runCommand(t, goalsCmd(), "", "show", "42")
	require.Error(t, err)
	assert.Equal(t, "goal not found", common.UserMessage(err))
}

func TestGoalsEdit(t *testing.T) {
	db := setupSeededTest(t, testutil.Holiday())
	id := db.MustGoal("Holiday").ID

	out, err := runCommand(t, goalsCmd(), "", "edit", "1", "--name", "Summer trip", "--target", "1200", "--private")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated goal #1 Summer trip")

	goal, err := db.Storage.GetGoal(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Summer trip", goal.Name)
	assert.Equal(t, "1200", goal.Target.String())
	assert.True(t, goal.IsPrivate)
	assert.Equal(t, model.FrequencyWeekly, goal.Frequency, "untouched fields keep their value")

	_, err = runCommand(t, goalsCmd(), "", "edit", "1")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "nothing to change")
}

func TestGoalsStatusCommands(t *testing.T) {
	db := setupSeededTest(t, testutil.Holiday())
	ctx := context.Background()
	id := db.MustGoal("Holiday").ID

	steps := []struct {
		command  string
		output   string
		expected model.GoalStatus
	}{
		{command: "pause", output: "Paused goal #1 Holiday", expected: model.GoalStatusPaused},
		{command: "complete", output: "Completed goal #1 Holiday", expected: model.GoalStatusCompleted},
		{command: "activate", output: "Activated goal #1 Holiday", expected: model.GoalStatusActive},
	}

	for _, step := range steps {
		out, err := runCommand(t, goalsCmd(), "", step.command, "1")
		require.NoError(t, err, step.command)
		assert.Contains(t, out, step.output)

		goal, err := db.Storage.GetGoal(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, step.expected, goal.Status)
	}

	_, err := runCommand(t, goalsCmd(), "", "pause", "9")
	require.Error(t, err)
	assert.Equal(t, "goal not found", common.UserMessage(err))
}

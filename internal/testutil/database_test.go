package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/ndalama/internal/pacing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_Seeds(t *testing.T) {
	db := SetupTestDB(t, EmergencyFund(), Holiday())
	ctx := context.Background()

	counts, err := db.Storage.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Goals)
	assert.Equal(t, 2, counts.Contributions)

	fund := db.MustGoal("Emergency fund")
	contributions, err := db.Storage.ListContributionsForGoal(ctx, fund.ID)
	require.NoError(t, err)

	result := pacing.Calculate(fund, contributions, Start.AddDate(0, 0, 90))
	assert.Equal(t, pacing.StatusBehind, result.Status)
}

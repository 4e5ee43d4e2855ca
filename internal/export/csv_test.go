package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func sampleGoals() []model.Goal {
	return []model.Goal{
		{
			ID:          2,
			Name:        `Trip to "Cape" Town`,
			Description: "Flights, hotel",
			Target:      decimal.RequireFromString("4500.75"),
			CreatedAt:   created,
			TargetDate:  created.AddDate(0, 6, 0),
			IsPriority:  true,
			Frequency:   model.FrequencySemiAnnual,
			Status:      model.GoalStatusActive,
			Type:        model.GoalTypeSavings,
			Purpose:     "travel",
		},
		{
			ID:        1,
			Name:      "Rainy day",
			Target:    decimal.NewFromInt(1000),
			CreatedAt: created,
			IsPrivate: true,
			Frequency: model.FrequencyWeekly,
			Status:    model.GoalStatusPaused,
			Type:      model.GoalTypeInvestment,
		},
	}
}

func sampleContributions() []model.Contribution {
	return []model.Contribution{
		{ID: 5, GoalID: 2, Amount: decimal.RequireFromString("250.10"), Type: "deposit", Description: "bonus, June", Date: created.AddDate(0, 0, 10), Source: "manual"},
		{ID: 4, GoalID: 9, Amount: decimal.NewFromInt(20), Type: "CREDIT", Description: "", Date: created, Source: "ofx:1234"},
	}
}

func TestWrite_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleGoals(), sampleContributions()))

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 9)

	assert.Equal(t, GoalsSection, lines[0])
	assert.Equal(t, GoalsHeader, lines[1])
	assert.Equal(t,
		`2,"Trip to ""Cape"" Town","Flights, hotel",4500.75,1705311000000,true,false,6 months,1721035800000,active,SAVINGS,travel`,
		lines[2])
	assert.Equal(t, `1,"Rainy day","",1000,1705311000000,false,true,Weekly,0,paused,INVESTMENT,`, lines[3])
	assert.Equal(t, "", lines[4])
	assert.Equal(t, ContributionsSection, lines[5])
	assert.Equal(t, ContributionsHeader, lines[6])
	assert.Equal(t, `5,250.1,deposit,"bonus, June",1706175000000,2,manual`, lines[7])
	assert.Equal(t, `4,20,CREDIT,"",1705311000000,9,ofx:1234`, lines[8])
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, nil))

	want := GoalsSection + "\n" + GoalsHeader + "\n\n" + ContributionsSection + "\n" + ContributionsHeader + "\n"
	assert.Equal(t, want, buf.String())
}

func TestParse_RoundTrip(t *testing.T) {
	goals := sampleGoals()
	contributions := sampleContributions()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, goals, contributions))

	doc, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, doc.Goals, len(goals))
	require.Len(t, doc.Contributions, len(contributions))

	got := doc.Goals[0]
	assert.Equal(t, goals[0].Name, got.Name)
	assert.Equal(t, goals[0].Description, got.Description)
	assert.True(t, goals[0].Target.Equal(got.Target))
	assert.True(t, goals[0].CreatedAt.Equal(got.CreatedAt))
	assert.True(t, goals[0].TargetDate.Equal(got.TargetDate))
	assert.Equal(t, model.FrequencySemiAnnual, got.Frequency)
	assert.Equal(t, model.GoalTypeSavings, got.Type)
	assert.True(t, doc.Goals[1].TargetDate.IsZero())
	assert.True(t, doc.Goals[1].IsPrivate)

	c := doc.Contributions[0]
	assert.Equal(t, "bonus, June", c.Description)
	assert.True(t, decimal.RequireFromString("250.10").Equal(c.Amount))
	assert.Equal(t, int64(2), c.GoalID)
	assert.Equal(t, int64(9), doc.Contributions[1].GoalID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrMissingSection},
		{"wrong header", GoalsSection + "\nID,Name\n", ErrBadHeader},
		{"no contributions section", GoalsSection + "\n" + GoalsHeader + "\n", ErrMissingSection},
		{
			"short goal row",
			GoalsSection + "\n" + GoalsHeader + "\n1,\"x\"\n\n" + ContributionsSection + "\n" + ContributionsHeader + "\n",
			ErrBadRow,
		},
		{
			"bad amount",
			GoalsSection + "\n" + GoalsHeader + "\n\n" + ContributionsSection + "\n" + ContributionsHeader + "\n1,lots,deposit,\"\",0,1,manual\n",
			ErrBadRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

package format

import (
	"testing"
	"time"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		format int
		want   string
	}{
		{"zero", "0", model.NumberFormatComma, "0.00"},
		{"grouped", "1234.56", model.NumberFormatComma, "1,234.56"},
		{"pads decimals", "1234.5", model.NumberFormatComma, "1,234.50"},
		{"dot grouping", "1234.56", model.NumberFormatDot, "1.234,56"},
		{"negative", "-1234.5", model.NumberFormatComma, "-1,234.50"},
		{"just below ten million", "9999999.99", model.NumberFormatComma, "9,999,999.99"},
		{"ten million", "10000000", model.NumberFormatComma, "10 M"},
		{"millions", "12500000", model.NumberFormatComma, "12.5 M"},
		{"millions dot", "12500000", model.NumberFormatDot, "12,5 M"},
		{"billions", "2345678901", model.NumberFormatComma, "2.35 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Number(decimal.RequireFromString(tt.amount), tt.format)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmount(t *testing.T) {
	d := decimal.RequireFromString("1500")

	assert.Equal(t, "USD 1,500.00", Amount(d, model.DefaultSettings()))
	assert.Equal(t, "1.500,00", Amount(d, model.Settings{NumberFormat: model.NumberFormatDot}))

	private := model.Goal{IsPrivate: true}
	assert.Equal(t, Masked, GoalAmount(d, private, model.DefaultSettings()))
	assert.Equal(t, "USD 1,500.00", GoalAmount(d, model.Goal{}, model.DefaultSettings()))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "0%", Percent(0))
	assert.Equal(t, "45%", Percent(0.456))
	assert.Equal(t, "100%", Percent(1))
}

func TestDueDate(t *testing.T) {
	assert.Equal(t, "No due date", DueDate(time.Time{}))
	assert.Equal(t, "Due Mar 09, 2025", DueDate(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func TestFrequency(t *testing.T) {
	assert.Equal(t, "6 months", Frequency(model.FrequencySemiAnnual))
	assert.Equal(t, "Bi-weekly", Frequency(model.FrequencyBiWeekly))
	assert.Equal(t, "fortnightly", Frequency(model.Frequency(" fortnightly ")))
}

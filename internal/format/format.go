// Package format renders money, percentages and dates for display.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Masked replaces amounts of private goals.
const Masked = "****"

var (
	tenMillion = decimal.NewFromInt(10_000_000)
	million    = decimal.NewFromInt(1_000_000)
	billion    = decimal.NewFromInt(1_000_000_000)
)

func printer(numberFormat int) *message.Printer {
	if numberFormat == model.NumberFormatDot {
		return message.NewPrinter(language.German)
	}
	return message.NewPrinter(language.English)
}

// Number formats d with grouping and two decimals. Magnitudes of ten
// million and above are shortened to millions ("12.5 M") or billions.
// Rounding is half-even.
func Number(d decimal.Decimal, numberFormat int) string {
	p := printer(numberFormat)

	if d.Abs().LessThan(tenMillion) {
		return p.Sprint(number.Decimal(d.RoundBank(2).InexactFloat64(), number.Scale(2)))
	}

	divisor, suffix := million, "M"
	if d.Abs().GreaterThanOrEqual(billion) {
		divisor, suffix = billion, "B"
	}
	core := d.Div(divisor).RoundBank(2).InexactFloat64()
	return p.Sprint(number.Decimal(core, number.MaxFractionDigits(2), number.NoSeparator())) + " " + suffix
}

// Amount formats d with the currency and number format from settings.
func Amount(d decimal.Decimal, s model.Settings) string {
	formatted := Number(d, s.NumberFormat)
	if s.Currency == "" {
		return formatted
	}
	return s.Currency + " " + formatted
}

// GoalAmount formats d for goal, masking it when the goal is private.
func GoalAmount(d decimal.Decimal, goal model.Goal, s model.Settings) string {
	if goal.IsPrivate {
		return Masked
	}
	return Amount(d, s)
}

// Percent renders a 0..1 progress fraction as a truncated whole percentage.
func Percent(progress float64) string {
	return fmt.Sprintf("%d%%", int(progress*100))
}

// DueDate renders a goal's target date.
func DueDate(t time.Time) string {
	if t.IsZero() {
		return "No due date"
	}
	return "Due " + t.Format("Jan 02, 2006")
}

// Frequency renders a contribution cadence as a display label.
func Frequency(f model.Frequency) string {
	if label, ok := frequencyLabels[f]; ok {
		return label
	}
	return strings.TrimSpace(string(f))
}

var frequencyLabels = map[model.Frequency]string{
	model.FrequencyDaily:      "Daily",
	model.FrequencyWeekly:     "Weekly",
	model.FrequencyBiWeekly:   "Bi-weekly",
	model.FrequencyMonthly:    "Monthly",
	model.FrequencyBiMonthly:  "Bi-monthly",
	model.FrequencyTriMonthly: "Tri-monthly",
	model.FrequencyQuarterly:  "Quarterly",
	model.FrequencySemiAnnual: "6 months",
	model.FrequencyYearly:     "Yearly",
}

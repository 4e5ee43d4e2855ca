package model

import "strings"

// Frequency is the expected contribution cadence of a goal.
type Frequency string

// Known cadences.
const (
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyBiWeekly   Frequency = "bi-weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyBiMonthly  Frequency = "bi-monthly"
	FrequencyTriMonthly Frequency = "tri-monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semi-annual"
	FrequencyYearly     Frequency = "yearly"
)

// Frequencies lists the cadences in the order they are offered to users.
var Frequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyBiWeekly,
	FrequencyMonthly,
	FrequencyBiMonthly,
	FrequencyTriMonthly,
	FrequencyQuarterly,
	FrequencySemiAnnual,
	FrequencyYearly,
}

// periodDays treats a month as a fixed 30-day block and a year as 365 days.
var periodDays = map[Frequency]int{
	FrequencyDaily:      1,
	FrequencyWeekly:     7,
	FrequencyBiWeekly:   14,
	FrequencyMonthly:    30,
	FrequencyBiMonthly:  60,
	FrequencyTriMonthly: 90,
	FrequencyQuarterly:  90,
	FrequencySemiAnnual: 180,
	FrequencyYearly:     365,
}

var frequencyAliases = map[string]Frequency{
	"biweekly":    FrequencyBiWeekly,
	"bi weekly":   FrequencyBiWeekly,
	"fortnightly": FrequencyBiWeekly,
	"bimonthly":   FrequencyBiMonthly,
	"bi monthly":  FrequencyBiMonthly,
	"trimonthly":  FrequencyTriMonthly,
	"tri monthly": FrequencyTriMonthly,
	"6 months":    FrequencySemiAnnual,
	"six months":  FrequencySemiAnnual,
	"semiannual":  FrequencySemiAnnual,
	"semi annual": FrequencySemiAnnual,
	"annual":      FrequencyYearly,
	"annually":    FrequencyYearly,
}

// ParseFrequency normalizes a user supplied cadence label.
// Unrecognized labels are kept as typed; they pace as monthly.
func ParseFrequency(s string) Frequency {
	key := strings.ToLower(strings.TrimSpace(s))
	if _, ok := periodDays[Frequency(key)]; ok {
		return Frequency(key)
	}
	if f, ok := frequencyAliases[key]; ok {
		return f
	}
	return Frequency(strings.TrimSpace(s))
}

// Known reports whether f is one of the listed cadences.
func (f Frequency) Known() bool {
	_, ok := periodDays[f]
	return ok
}

// PeriodDays returns the length of one contribution period in days.
func (f Frequency) PeriodDays() int {
	if d, ok := periodDays[ParseFrequency(string(f))]; ok {
		return d
	}
	return periodDays[FrequencyMonthly]
}

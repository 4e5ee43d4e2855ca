// Package themes holds the dashboard color schemes.
package themes

import (
	"github.com/Veraticus/ndalama/internal/pacing"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the dashboard.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Error         lipgloss.Color
}

// StatusStyle picks the style for a pacing label.
func (t Theme) StatusStyle(status pacing.Status) lipgloss.Style {
	switch status {
	case pacing.StatusCompleted:
		return t.StatusSuccess
	case pacing.StatusOnTrack:
		return t.StatusInfo
	case pacing.StatusSlightlyBehind, pacing.StatusBehind:
		return t.StatusWarning
	case pacing.StatusSignificantlyBehind:
		return t.StatusError
	default:
		return t.StatusPending
	}
}

func newTheme(primary, secondary, success, warning, errColor, info, fg, subtle, border, muted lipgloss.Color) Theme {
	return Theme{
		Primary:   primary,
		Secondary: secondary,
		Muted:     muted,
		Border:    border,
		Error:     errColor,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(subtle),
		Normal: lipgloss.NewStyle().
			Foreground(fg),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Selected: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),

		StatusSuccess: lipgloss.NewStyle().Foreground(success).Bold(true),
		StatusInfo:    lipgloss.NewStyle().Foreground(info).Bold(true),
		StatusWarning: lipgloss.NewStyle().Foreground(warning).Bold(true),
		StatusError:   lipgloss.NewStyle().Foreground(errColor).Bold(true),
		StatusPending: lipgloss.NewStyle().Foreground(muted).Italic(true),
	}
}

// Default is the default theme.
var Default = newTheme(
	"#7c3aed", "#a78bfa",
	"#10b981", "#f59e0b", "#ef4444", "#3b82f6",
	"#fafafa", "#a3a3a3", "#404040", "#737373",
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(
	"#cba6f7", "#f5c2e7",
	"#a6e3a1", "#f9e2af", "#f38ba8", "#89dceb",
	"#cdd6f4", "#a6adc8", "#45475a", "#6c7086",
)

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	if name == "catppuccin" || name == "catppuccin-mocha" {
		return CatppuccinMocha
	}
	return Default
}

package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ndalama/internal/format"
	"github.com/Veraticus/ndalama/internal/pacing"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoading()
	}

	sections := []string{m.renderHeader()}
	if len(m.summary.Goals) == 0 {
		sections = append(sections, m.theme.Subtitle.Render("No goals yet. Create one with 'ndalama goals create'."))
	} else {
		rows := make([]string, 0, len(m.summary.Goals))
		for i, gp := range m.summary.Goals {
			rows = append(rows, m.renderGoal(gp, i == m.cursor))
		}
		sections = append(sections, m.theme.RoundedBox.Render(strings.Join(rows, "\n")))
	}

	if detail := m.renderDetail(); detail != "" {
		sections = append(sections, detail)
	}
	sections = append(sections, m.renderStatusBar(), m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderLoading() string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		m.theme.Subtitle.Render("Loading goals..."),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("Ndalama Goals")
	total := fmt.Sprintf("Total saved: %s across %d goals",
		format.Amount(m.summary.TotalSaved, m.display), len(m.summary.Goals))
	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Bold.Render(total))
}

func (m Model) renderGoal(gp pacing.GoalProgress, selected bool) string {
	cursor := "  "
	name := m.theme.Normal.Render(truncate(gp.Goal.Name, 24))
	if selected {
		cursor = m.theme.Selected.Render("▸ ")
		name = m.theme.Selected.Render(truncate(gp.Goal.Name, 24))
	}

	marker := " "
	if gp.Goal.IsPriority {
		marker = "★"
	}

	amounts := fmt.Sprintf("%s / %s",
		format.GoalAmount(gp.Saved, gp.Goal, m.display),
		format.GoalAmount(gp.Goal.Target, gp.Goal, m.display))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		cursor,
		marker+" ",
		lipgloss.NewStyle().Width(26).Render(name),
		lipgloss.NewStyle().Width(22).Render(m.theme.StatusStyle(gp.Status).Render(string(gp.Status))),
		m.bar.ViewAs(gp.Progress),
		fmt.Sprintf(" %4s  ", format.Percent(gp.Progress)),
		amounts,
	)
}

func (m Model) renderDetail() string {
	gp, ok := m.Selected()
	if !ok {
		return ""
	}

	lines := []string{
		fmt.Sprintf("%s · %s · %s · %s",
			gp.Goal.Status, gp.Goal.Type, format.Frequency(gp.Goal.Frequency), format.DueDate(gp.Goal.TargetDate)),
		fmt.Sprintf("Expected by now: %s  Contributions: %d",
			format.GoalAmount(gp.Expected, gp.Goal, m.display), gp.Contributions),
	}
	if shortfall := gp.Shortfall(); shortfall.IsPositive() && gp.Status != pacing.StatusInvalidTimeline {
		lines = append(lines, m.theme.StatusWarning.Render(
			"Behind by "+format.GoalAmount(shortfall, gp.Goal, m.display)))
	}
	return m.theme.Subtitle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatusBar() string {
	switch {
	case m.lastErr != nil:
		return lipgloss.NewStyle().Foreground(m.theme.Error).Render("Error: " + m.lastErr.Error())
	case m.notice != "":
		return m.theme.StatusSuccess.Render(m.notice)
	case m.summary.Orphans > 0:
		return lipgloss.NewStyle().Foreground(m.theme.Muted).Render(
			fmt.Sprintf("%d contributions reference deleted goals", m.summary.Orphans))
	}
	return ""
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

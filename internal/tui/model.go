// Package tui implements the live goals dashboard.
package tui

import (
	"fmt"
	"time"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/Veraticus/ndalama/internal/pacing"
	"github.com/Veraticus/ndalama/internal/service"
	"github.com/Veraticus/ndalama/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the dashboard state. Everything shown is re-derived from the
// latest snapshot.
type Model struct {
	theme    themes.Theme
	lastErr  error
	store    Store
	now      func() time.Time
	updates  <-chan service.Snapshot
	settings <-chan model.Settings
	notice   string
	help     help.Model
	bar      progress.Model
	summary  pacing.Summary
	keymap   KeyMap
	display  model.Settings
	cursor   int
	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates a dashboard reading snapshots from updates.
func NewModel(store Store, updates <-chan service.Snapshot, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	bar := progress.New(
		progress.WithGradient(string(cfg.Theme.Secondary), string(cfg.Theme.Primary)),
		progress.WithWidth(20),
		progress.WithoutPercentage(),
	)

	return Model{
		theme:    cfg.Theme,
		store:    store,
		now:      cfg.Now,
		updates:  updates,
		settings: cfg.SettingsUpdate,
		display:  cfg.Settings,
		help:     help.New(),
		bar:      bar,
		keymap:   DefaultKeyMap(),
		width:    cfg.Width,
		height:   cfg.Height,
	}
}

// Init starts listening for snapshots.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.updates), waitForSettings(m.settings))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		m.summary = pacing.Summarize(msg.snap.Goals, msg.snap.Contributions, m.now())
		m.ready = true
		m.clampCursor()
		return m, waitForSnapshot(m.updates)

	case settingsMsg:
		m.display = msg.settings
		return m, waitForSettings(m.settings)

	case subscriptionClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case actionDoneMsg:
		if msg.err != nil {
			m.lastErr = fmt.Errorf("failed to set goal %d %s: %w", msg.goalID, msg.action, msg.err)
			m.notice = ""
		} else {
			m.lastErr = nil
			m.notice = fmt.Sprintf("Goal %d is now %s", msg.goalID, msg.action)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keymap.Up):
		m.cursor--
	case key.Matches(msg, m.keymap.Down):
		m.cursor++
	case key.Matches(msg, m.keymap.Home):
		m.cursor = 0
	case key.Matches(msg, m.keymap.End):
		m.cursor = len(m.summary.Goals) - 1
	case key.Matches(msg, m.keymap.Pause):
		return m, m.actOnSelected(model.GoalStatusPaused)
	case key.Matches(msg, m.keymap.Activate):
		return m, m.actOnSelected(model.GoalStatusActive)
	case key.Matches(msg, m.keymap.Complete):
		return m, m.actOnSelected(model.GoalStatusCompleted)
	}
	m.clampCursor()
	return m, nil
}

func (m Model) actOnSelected(status model.GoalStatus) tea.Cmd {
	gp, ok := m.Selected()
	if !ok || gp.Goal.Status == status {
		return nil
	}
	return m.setStatus(gp.Goal.ID, status)
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.summary.Goals) {
		m.cursor = len(m.summary.Goals) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Selected returns the goal under the cursor.
func (m Model) Selected() (pacing.GoalProgress, bool) {
	if m.cursor < 0 || m.cursor >= len(m.summary.Goals) {
		return pacing.GoalProgress{}, false
	}
	return m.summary.Goals[m.cursor], true
}

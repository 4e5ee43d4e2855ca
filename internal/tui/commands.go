package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/Veraticus/ndalama/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

const actionTimeout = 5 * time.Second

// waitForSnapshot blocks until the next snapshot arrives.
func waitForSnapshot(ch <-chan service.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{}
		}
		return snapshotMsg{snap: snap}
	}
}

// waitForSettings blocks until settings change. A nil or closed channel
// produces no message.
func waitForSettings(ch <-chan model.Settings) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		settings, ok := <-ch
		if !ok {
			return nil
		}
		return settingsMsg{settings: settings}
	}
}

// setStatus changes a goal's status through the store. The dashboard
// redraws from the snapshot that follows the write.
func (m Model) setStatus(goalID int64, status model.GoalStatus) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		var err error
		switch status {
		case model.GoalStatusPaused:
			err = store.PauseGoal(ctx, goalID)
		case model.GoalStatusActive:
			err = store.ActivateGoal(ctx, goalID)
		case model.GoalStatusCompleted:
			err = store.CompleteGoal(ctx, goalID)
		default:
			err = fmt.Errorf("unsupported status %q", status)
		}
		return actionDoneMsg{goalID: goalID, action: string(status), err: err}
	}
}

package tui

import (
	"github.com/Veraticus/ndalama/internal/model"
	"github.com/Veraticus/ndalama/internal/service"
)

// snapshotMsg carries a committed record set from the store.
type snapshotMsg struct {
	snap service.Snapshot
}

// settingsMsg carries updated display settings.
type settingsMsg struct {
	settings model.Settings
}

// subscriptionClosedMsg reports that the store stopped sending snapshots.
type subscriptionClosedMsg struct{}

// actionDoneMsg reports the outcome of a goal status change.
type actionDoneMsg struct {
	err    error
	action string
	goalID int64
}

package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the dashboard until the user quits or ctx is done.
func Run(ctx context.Context, store Store, opts ...Option) error {
	if store == nil {
		return errors.New("storage is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, err := store.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to goal updates: %w", err)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	program := tea.NewProgram(NewModel(store, updates, opts...), programOpts...)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

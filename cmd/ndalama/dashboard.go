package main

import (
	"context"
	"time"

	"github.com/Veraticus/ndalama/internal/tui"
	"github.com/Veraticus/ndalama/internal/tui/themes"
	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	var (
		theme  string
		inline bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Live view of every goal and its pace",
		Long: `Open an interactive dashboard showing the total saved and the pace of every
goal. Pausing, activating, or completing a goal redraws it from the stored data.

Keys: up/down (or k/j) to select, p to pause, a to activate, c to complete,
? for help, q to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			clock, err := dashboardClock()
			if err != nil {
				return err
			}

			settingsStore, err := initSettings()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return tui.Run(ctx, store,
				tui.WithTheme(themes.ByName(theme)),
				tui.WithClock(clock),
				tui.WithSettings(settingsStore.Load(), settingsStore.Watch(ctx)),
				tui.WithAltScreen(!inline),
			)
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "default", "Color theme (default, catppuccin)")
	cmd.Flags().BoolVar(&inline, "inline", false, "Draw in the current screen instead of the alternate screen")

	return cmd
}

// dashboardClock pins the dashboard to --now when it is set.
func dashboardClock() (func() time.Time, error) {
	fixed, err := referenceTime()
	if err != nil {
		return nil, err
	}
	if viperNowSet() {
		return func() time.Time { return fixed }, nil
	}
	return time.Now, nil
}

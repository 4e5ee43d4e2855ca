package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/ndalama/internal/cli"
	"github.com/spf13/cobra"
)

func wipeCmd() *cobra.Command {
	var (
		force        bool
		noCheckpoint bool
	)

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every goal and contribution",
		Long: `Wipe removes all goals and contributions in one step. Either everything is
deleted or nothing is.

An automatic checkpoint is taken first, so a wipe can be undone with
'ndalama checkpoint restore'. Pass --no-checkpoint to skip it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			counts, err := store.Counts(ctx)
			_ = store.Close()
			if err != nil {
				return fmt.Errorf("failed to count records: %w", err)
			}

			if counts.Empty() {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No goals or contributions. Nothing to wipe."))
				return nil
			}

			if !force {
				fmt.Fprintf(out, "This will delete %d goals and %d contributions.\n", counts.Goals, counts.Contributions)
				ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Are you sure you want to continue?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("Wipe cancelled."))
					return nil
				}
			}

			return runReported(ctx, out, "Wipe", func(ctx context.Context) (string, error) {
				return runWipe(ctx, noCheckpoint)
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "Do not take a checkpoint before wiping")

	return cmd
}

func runWipe(ctx context.Context, noCheckpoint bool) (string, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	counts, err := store.Counts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count records: %w", err)
	}

	checkpointID := ""
	if !noCheckpoint {
		manager, err := store.NewCheckpointManager()
		if err != nil {
			return "", fmt.Errorf("failed to create checkpoint manager: %w", err)
		}
		meta, err := manager.AutoCheckpoint(ctx, "wipe")
		if err != nil {
			return "", fmt.Errorf("failed to create checkpoint: %w", err)
		}
		checkpointID = meta.ID
	}

	if err := store.WipeAll(ctx); err != nil {
		return "", fmt.Errorf("failed to wipe data: %w", err)
	}

	message := fmt.Sprintf("Deleted %d goals and %d contributions", counts.Goals, counts.Contributions)
	if checkpointID != "" {
		message += fmt.Sprintf(" (restore with: ndalama checkpoint restore %s)", checkpointID)
	}
	return message, nil
}

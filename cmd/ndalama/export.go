package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ndalama/internal/common"
	"github.com/Veraticus/ndalama/internal/config"
	"github.com/Veraticus/ndalama/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all goals and contributions to CSV",
		Long: `Write every goal and contribution to a new CSV file named
ndalama_goals_export_<timestamp>.csv. Nothing is written when there is no data.`,
		Example: `  # Export to the configured directory
  ndalama export

  # Export somewhere else
  ndalama export --dir ~/Documents`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReported(cmd.Context(), cmd.OutOrStdout(), "Export", func(ctx context.Context) (string, error) {
				return runExport(ctx, dir)
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write the export to (default: export.dir)")

	return cmd
}

func runExport(ctx context.Context, dir string) (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = cfg.ExportDir
	}
	dir = config.ExpandPath(dir)

	now, err := referenceTime()
	if err != nil {
		return "", err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	path, err := export.NewExporter(slog.Default()).Export(ctx, store, dir, now)
	if err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			return "", common.NewUserError("no goals or contributions to export", err)
		}
		return "", err
	}

	return fmt.Sprintf("Exported to %s", path), nil
}

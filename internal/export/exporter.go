package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/ndalama/internal/common"
	"github.com/Veraticus/ndalama/internal/service"
)

// ErrNothingToExport is returned when there are no goals and no contributions.
var ErrNothingToExport = common.ErrNothingToExport

// Snapshotter loads the full record set.
type Snapshotter interface {
	Snapshot(ctx context.Context) (service.Snapshot, error)
}

// Exporter writes export files to disk.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates an exporter. A nil logger uses slog.Default.
func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// FileName returns the export file name for the given time.
func FileName(now time.Time) string {
	return fmt.Sprintf("ndalama_goals_export_%d.csv", now.UnixMilli())
}

// Export writes every goal and contribution from source into a new file in
// dir and returns its path. The file appears only once fully written.
func (e *Exporter) Export(ctx context.Context, source Snapshotter, dir string, now time.Time) (string, error) {
	snap, err := source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load records: %w", err)
	}
	if len(snap.Goals) == 0 && len(snap.Contributions) == 0 {
		return "", ErrNothingToExport
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			e.logger.Warn("failed to remove partial export", "path", tmpPath, "error", rmErr)
		}
	}

	if err := Write(tmp, snap.Goals, snap.Contributions); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to sync export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to close export file: %w", err)
	}

	path := filepath.Join(dir, FileName(now))
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to finalize export file: %w", err)
	}

	e.logger.Debug("exported records",
		"path", path,
		"goals", len(snap.Goals),
		"contributions", len(snap.Contributions))
	return path, nil
}

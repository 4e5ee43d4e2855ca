package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/ndalama/internal/cli"
	"github.com/Veraticus/ndalama/internal/common"
	"github.com/Veraticus/ndalama/internal/config"
	"github.com/Veraticus/ndalama/internal/settings"
	"github.com/Veraticus/ndalama/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	keyNow     = "clock.now"
	dateLayout = "2006-01-02"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// loadConfig resolves configuration from viper. Defaults are registered
// here too so subcommands work without the root pre-run.
func loadConfig() (*config.Config, error) {
	config.SetDefaults(viper.GetViper())
	return config.Load(viper.GetViper())
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initSettings returns the configured settings store.
func initSettings() (*settings.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return settings.NewStore(cfg.SettingsPath), nil
}

// referenceTime is the clock used for pacing: --now when set, otherwise
// the current time.
func referenceTime() (time.Time, error) {
	if !viperNowSet() {
		return time.Now(), nil
	}
	raw := strings.TrimSpace(viper.GetString(keyNow))
	t, err := parseDate(raw)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid --now value %q", raw), err)
	}
	return t, nil
}

func viperNowSet() bool {
	return strings.TrimSpace(viper.GetString(keyNow)) != ""
}

// parseDate accepts RFC3339 timestamps or plain dates, read as UTC midnight.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(dateLayout, raw, time.UTC)
}

func parseGoalID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("invalid goal id %q", raw), err)
	}
	return id, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("invalid %s %q", field, raw), err)
	}
	if d.IsNegative() {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("%s cannot be negative", field), nil)
	}
	return d, nil
}

// reportedError marks an error whose message was already shown.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// runReported runs op on its own goroutine and prints exactly one line for
// it: the success message, or the failure. An interrupt prints its own
// notice instead.
func runReported(ctx context.Context, w io.Writer, operation string, op func(context.Context) (string, error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	handler := cli.NewInterruptHandler(w)
	ctx = handler.HandleInterrupts(ctx, operation, "No changes were saved.")

	type outcome struct {
		err     error
		message string
	}
	done := make(chan outcome, 1)
	go func() {
		message, err := op(ctx)
		done <- outcome{message: message, err: err}
	}()
	result := <-done

	if result.err != nil {
		slog.Debug("Operation failed", "operation", operation, "error", result.err)
		if !handler.WasInterrupted() {
			fmt.Fprintln(w, cli.FormatError(fmt.Sprintf("%s failed: %s", operation, common.UserMessage(result.err))))
		}
		return &reportedError{err: result.err}
	}

	fmt.Fprintln(w, cli.FormatSuccess(result.message))
	return nil
}

package tui

import (
	"context"
	"time"

	"github.com/Veraticus/ndalama/internal/model"
	"github.com/Veraticus/ndalama/internal/service"
	"github.com/Veraticus/ndalama/internal/tui/themes"
)

// Store is what the dashboard needs from persistence.
type Store interface {
	Subscribe(ctx context.Context) (<-chan service.Snapshot, error)
	PauseGoal(ctx context.Context, id int64) error
	ActivateGoal(ctx context.Context, id int64) error
	CompleteGoal(ctx context.Context, id int64) error
}

// Config holds dashboard configuration.
type Config struct {
	Now            func() time.Time
	SettingsUpdate <-chan model.Settings
	Theme          themes.Theme
	Settings       model.Settings
	Width          int
	Height         int
	AltScreen      bool
}

// Option is a functional option for configuring the dashboard.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Settings:  model.DefaultSettings(),
		Now:       time.Now,
		Width:     100,
		Height:    30,
		AltScreen: true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithClock sets the reference time used for pacing.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithSettings sets the display settings, and optionally a channel of
// later changes.
func WithSettings(settings model.Settings, updates <-chan model.Settings) Option {
	return func(c *Config) {
		c.Settings = settings
		c.SettingsUpdate = updates
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}

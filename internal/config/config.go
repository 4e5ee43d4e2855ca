package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/ndalama/internal/common"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath  = "database.path"
	KeySettingsPath  = "settings.path"
	KeyExportDir     = "export.dir"
	KeyLogLevel      = "logging.level"
	KeyLogFormat     = "logging.format"
	DefaultDataDir   = "$HOME/.local/share/ndalama"
	DefaultLogFormat = "console"
)

// Config holds resolved application paths and logging options.
type Config struct {
	DatabasePath string
	SettingsPath string
	ExportDir    string
	LogLevel     string
	LogFormat    string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, filepath.Join(DefaultDataDir, "ndalama.db"))
	v.SetDefault(KeySettingsPath, filepath.Join(DefaultDataDir, "settings.json"))
	v.SetDefault(KeyExportDir, filepath.Join(DefaultDataDir, "exports"))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
}

// Load reads configuration from v, expanding paths.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		SettingsPath: ExpandPath(v.GetString(KeySettingsPath)),
		ExportDir:    ExpandPath(v.GetString(KeyExportDir)),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    strings.ToLower(v.GetString(KeyLogFormat)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required values are present.
func (c *Config) Validate() error {
	required := map[string]string{
		KeyDatabasePath: c.DatabasePath,
		KeySettingsPath: c.SettingsPath,
		KeyExportDir:    c.ExportDir,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s", common.ErrMissingConfig, key)
		}
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: invalid log format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLogger_JSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	SetupLogger(&buf, slog.LevelInfo, "json")

	slog.Error("export failed", "error", errors.New("disk full"), "dir", "/tmp")
	slog.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "export failed", entry["msg"])
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, "/tmp", entry["dir"])
}

func TestUserMessage(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewUserError("Export failed", cause)

	assert.Equal(t, "Export failed", UserMessage(err))
	assert.Equal(t, "Export failed: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
}

package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/ndalama/internal/common"
	"github.com/Veraticus/ndalama/internal/config"
	"github.com/Veraticus/ndalama/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNow is 90 days after testutil.Start.
const testNow = "2024-03-31"

// setupCommandTest points configuration at a fresh temp directory and pins
// the pacing clock.
func setupCommandTest(t *testing.T) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	viper.Set(config.KeyDatabasePath, filepath.Join(dir, "ndalama.db"))
	viper.Set(config.KeySettingsPath, filepath.Join(dir, "settings.json"))
	viper.Set(config.KeyExportDir, filepath.Join(dir, "exports"))
	viper.Set(keyNow, testNow)
	return dir
}

// setupSeededTest is setupCommandTest over a database holding fixtures.
func setupSeededTest(t *testing.T, fixtures ...testutil.Fixture) *testutil.TestDB {
	t.Helper()

	setupCommandTest(t)
	db := testutil.SetupTestDB(t, fixtures...)
	viper.Set(config.KeyDatabasePath, db.Path)
	return db
}

func runCommand(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{
			name:     "plain date is UTC midnight",
			input:    "2024-03-31",
			expected: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "RFC3339",
			input:    "2024-03-31T12:30:00Z",
			expected: time.Date(2024, 3, 31, 12, 30, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			input:   "31/03/2024",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestParseGoalID(t *testing.T) {
	id, err := parseGoalID("#12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"0", "-3", "abc", ""} {
		_, err := parseGoalID(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseAmount(t *testing.T) {
	d, err := parseAmount(" 12.50 ", "amount")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	_, err = parseAmount("-1", "amount")
	assert.Error(t, err)
	assert.Equal(t, "amount cannot be negative", common.UserMessage(err))

	_, err = parseAmount("ten", "target")
	assert.Error(t, err)
}

func TestReferenceTime(t *testing.T) {
	setupCommandTest(t)

	now, err := referenceTime()
	require.NoError(t, err)
	assert.True(t, testutil.Start.AddDate(0, 0, 90).Equal(now))

	viper.Set(keyNow, "")
	assert.False(t, viperNowSet())
	before := time.Now()
	now, err = referenceTime()
	require.NoError(t, err)
	assert.False(t, now.Before(before))

	viper.Set(keyNow, "yesterday")
	_, err = referenceTime()
	assert.Error(t, err)
}

func TestRunReported(t *testing.T) {
	t.Run("success prints one line", func(t *testing.T) {
		var buf bytes.Buffer
		err := runReported(context.Background(), &buf, "Export", func(context.Context) (string, error) {
			return "Exported to /tmp/x.csv", nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
		assert.Contains(t, buf.String(), "Exported to /tmp/x.csv")
	})

	t.Run("failure prints one line and is marked reported", func(t *testing.T) {
		var buf bytes.Buffer
		cause := common.NewUserError("disk full", errors.New("ENOSPC"))
		err := runReported(context.Background(), &buf, "Export", func(context.Context) (string, error) {
			return "", cause
		})
		require.Error(t, err)

		var reported *reportedError
		assert.True(t, errors.As(err, &reported))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
		assert.Contains(t, buf.String(), "Export failed: disk full")
	})
}

func TestVersionCmd(t *testing.T) {
	out, err := runCommand(t, versionCmd(), "")
	require.NoError(t, err)
	assert.Equal(t, "ndalama dev\n", out)
}

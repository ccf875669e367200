package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestSetupFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := DefaultConfig()
	cfg.Level = "info"
	cfg.FilePath = filepath.Join(t.TempDir(), "logs", "avrex.log")

	var stderr bytes.Buffer
	cleanup, err := Setup(cfg, &stderr)
	require.NoError(t, err)

	slog.Info("report downloaded", "report_id", "3")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "report downloaded")
	assert.Contains(t, string(data), "report_id=3")
	assert.Zero(t, stderr.Len())
}

func TestSetupStderr(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stderr bytes.Buffer
	cleanup, err := Setup(Config{Level: "debug"}, &stderr)
	require.NoError(t, err)
	defer cleanup()

	slog.Debug("logging in", "user", "alice", "password", "hunter2")

	out := stderr.String()
	assert.Contains(t, out, "user=alice")
	assert.Contains(t, out, "[redacted]")
	assert.NotContains(t, out, "hunter2")
}

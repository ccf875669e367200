// Package logging configures slog for the avrex command, optionally writing
// to a rotated log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	FilePath   string // rotated log file; empty writes to the command's stderr
	MaxSizeMB  int    // size that triggers rotation
	MaxBackups int    // rotated files kept
	MaxAgeDays int    // days rotated files are kept
	Compress   bool   // gzip rotated files
}

// DefaultConfig returns the defaults for a command line run: quiet unless
// something goes wrong, small rotated files when logging to disk.
func DefaultConfig() Config {
	return Config{
		Level:      "warn",
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// secretKeys are attribute keys whose values are never written.
var secretKeys = map[string]bool{
	"password": true,
	"cookie":   true,
}

// Setup installs the default slog logger. Without a FilePath records go to
// stderr; stdout is left to command output. The returned function closes the
// log file, if any.
func Setup(cfg Config, stderr io.Writer) (func() error, error) {
	out, closeFn, err := open(cfg, stderr)
	if err != nil {
		return nil, err
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: maskSecrets,
	}).WithAttrs([]slog.Attr{slog.Int("pid", os.Getpid())})
	slog.SetDefault(slog.New(handler))

	return closeFn, nil
}

func open(cfg Config, stderr io.Writer) (io.Writer, func() error, error) {
	if cfg.FilePath == "" {
		if stderr == nil {
			stderr = os.Stderr
		}
		return stderr, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
	return lj, lj.Close, nil
}

func maskSecrets(_ []string, a slog.Attr) slog.Attr {
	if secretKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "[redacted]")
	}
	return a
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

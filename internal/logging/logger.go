package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"jugayaprende/internal/config"
)

// New builds the application logger. Console output always goes through tint;
// when cfg.Dir is set the same records are also written to a rotated file.
func New(cfg config.LogConfig) (*slog.Logger, error) {
	level := ParseLevel(cfg.Level)

	var w io.Writer = os.Stdout
	noColor := false

	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
			return nil, fmt.Errorf("invalid log config: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir failed: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "server.log"),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		w = io.MultiWriter(os.Stdout, file)
		noColor = true
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	})), nil
}

// ParseLevel maps a textual level to slog; unknown values mean info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

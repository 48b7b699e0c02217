// Package logging builds the process-wide slog logger. Components get
// their own child via logger.With("component", ...) at wiring time.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup creates the root logger at the given level ("debug", "info",
// "warn", "error"; case-insensitive, anything else means info), installs
// it as the slog default, and returns it. The level normally comes from
// SPAJZ_LOG_LEVEL.
func Setup(level string) *slog.Logger {
	lvl := slog.LevelInfo
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return logger
}

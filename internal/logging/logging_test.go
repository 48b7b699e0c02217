package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"DEBUG", slog.LevelDebug, slog.LevelDebug - 1},
		{" warn ", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"", slog.LevelInfo, slog.LevelDebug},
		{"garbage", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		logger := Setup(tt.level)
		if !logger.Enabled(context.Background(), tt.enabled) {
			t.Errorf("Setup(%q): level %v should be enabled", tt.level, tt.enabled)
		}
		if logger.Enabled(context.Background(), tt.muted) {
			t.Errorf("Setup(%q): level %v should be muted", tt.level, tt.muted)
		}
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	logger := Setup("info")
	if slog.Default() != logger {
		t.Error("Setup should install the returned logger as the slog default")
	}
}

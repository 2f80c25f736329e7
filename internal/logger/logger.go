package logger

import (
	"log/slog"
	"os"
)

// Logger is the application logger. It wraps slog so callers get
// structured output without importing slog everywhere.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing JSON to stdout at the given level.
func New(level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.Level(level),
		})),
	}
}

// Fatal is equivalent to Error followed by os.Exit(1).
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}

package logger

import (
	"log/slog"
	"os"
)

var log *slog.Logger = slog.Default()

// Init configures the global logger. Debug verbosity is decided once by
// the caller (flag or environment, resolved in cmd) and passed in here
// rather than sniffed from the environment at log time.
func Init(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	log = slog.New(handler)
	slog.SetDefault(log)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

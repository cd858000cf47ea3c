package logging

import (
	"log/slog"
	"os"
)

// Setup installs the stdout handler as the default logger and returns it so
// it can later be combined with the database handler.
func Setup(appEnv string) slog.Handler {
	handler := NewStdoutHandler(appEnv)
	slog.SetDefault(slog.New(handler))
	return handler
}

// NewStdoutHandler returns JSON output in production and debug-level text locally.
func NewStdoutHandler(appEnv string) slog.Handler {
	if appEnv == "development" {
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
}

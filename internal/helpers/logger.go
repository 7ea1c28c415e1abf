package helpers

import (
	"io"
	"log/slog"
)

// NewNoopLogger returns a logger that discards everything.
func NewNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewJSONLogger returns a JSON logger writing to w. The level starts at Warn and every verbosity step lowers it by one slog level.
func NewJSONLogger(w io.Writer, verbosity int, callerTrace bool) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: callerTrace,
		Level:     slog.LevelWarn - slog.Level(verbosity*4),
	}))
}

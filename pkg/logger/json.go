package logger

import (
	"log/slog"
	"os"
)

// NewJSONHandler returns a stdout JSON handler at the given level.
func NewJSONHandler(level slog.Level) slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}

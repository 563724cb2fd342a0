package glint

import (
	"log/slog"
	"os"
)

// logger is the package logger. Defaults to stderr at warn level so a
// host terminal UI is not polluted unless something is actually wrong.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelWarn,
}))

// SetLogger replaces the package logger. Pass a debug-level logger to trace
// record coalescing and render pass phases.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

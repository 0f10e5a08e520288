package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production runs want machine-readable
// JSON; everything else gets the text handler for grep-friendly local runs.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "mercato"))
}

package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide slog.Logger from LOG_FORMAT: "json" for
// deployed environments, anything else (the "pretty" default) falls back to
// the text handler for local development.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
}

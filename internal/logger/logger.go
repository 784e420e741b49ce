// Package logger provides structured logging setup for Bytespace.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/bytespace-io/bytespace/internal/config"
)

// New builds a *slog.Logger from the Logging config. Records go to stdout
// as JSON (or text when cfg.Format says so) and carry a "service"
// attribute. Unknown level strings fall back to info.
func New(cfg config.Logging) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(h).With("service", cfg.Service)
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

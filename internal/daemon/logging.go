package daemon

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/thejerf/suture/v4"
)

// ParseLevel maps the configured log level names onto slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger writing to w, stderr when w is nil, with
// a level that can be changed later.
func NewLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{}
	if level != nil {
		opts.Level = level
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// supervisorHook forwards suture events to logger.
func supervisorHook(logger *slog.Logger) suture.EventHook {
	return func(e suture.Event) {
		switch e.Type() {
		case suture.EventTypeServicePanic, suture.EventTypeServiceTerminate:
			logger.Error("service failed", "event", e.String())
		case suture.EventTypeBackoff:
			logger.Warn("supervisor backing off", "event", e.String())
		default:
			logger.Info("supervisor event", "event", e.String())
		}
	}
}

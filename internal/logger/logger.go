package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/retailstar/internal/config"
)

// New creates a logger writing to w. Format "json" emits one JSON object
// per line; anything else uses the human-readable console writer.
func New(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	out := w
	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel converts a level name to a zerolog.Level. Unknown or empty
// names fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

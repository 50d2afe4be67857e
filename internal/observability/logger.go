package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewLogger builds a structured logger writing to stdout.
// The logger is passed explicitly to every component; nothing is configured at import time.
func NewLogger(level string, pretty bool) zerolog.Logger {
	return NewLoggerWithWriter(os.Stdout, level, pretty)
}

// NewLoggerWithWriter builds a structured logger writing to w
func NewLoggerWithWriter(w io.Writer, level string, pretty bool) zerolog.Logger {
	if pretty {
		// Pretty console output for development
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", "speech-coach").
		Logger()
}

// ParseLevel maps a config string to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithRunID returns a child logger tagged with a pipeline run ID
func WithRunID(logger zerolog.Logger, runID string) zerolog.Logger {
	if runID == "" {
		runID = NewRunID()
	}
	return logger.With().Str("run_id", runID).Logger()
}

// NewRunID generates a new run ID
func NewRunID() string {
	return uuid.New().String()
}

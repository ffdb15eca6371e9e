// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a structured logger and installs it as the global zerolog logger.
// Development gets human-readable console output, every other env gets JSON.
func New(env, level string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return install(w, level)
}

func install(w io.Writer, level string) zerolog.Logger {
	zl := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
	log.Logger = zl
	return zl
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level, defaulting to info
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

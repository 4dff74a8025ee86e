// Package logging builds the zerolog loggers used by the command-line
// entry points. The catalog client takes whatever logger it is handed;
// this package only decides how that logger writes.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger writing to stderr at the given level.
//
// Format is "json" for machine-readable output or anything else for the
// human console writer. An unknown level falls back to info.
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if strings.ToLower(format) == "json" {
		return zerolog.New(os.Stderr).
			With().
			Timestamp().
			Logger().
			Level(lvl)
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).
		With().
		Timestamp().
		Logger().
		Level(lvl)
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

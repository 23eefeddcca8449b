// Package logging sets up the zerolog console logger shared by the binaries.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a console logger writing to w at the named level. Unknown or
// empty levels fall back to info.
func New(level string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(ParseLevel(level)).
		With().Timestamp().Logger()
}

// Setup installs New(level, os.Stderr) as the global logger and returns it.
func Setup(level string) zerolog.Logger {
	l := New(level, os.Stderr)
	log.Logger = l
	return l
}

// ParseLevel is zerolog.ParseLevel without the error.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

package logging

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type cronLogger struct {
	l zerolog.Logger
}

// Cron adapts l to the cron scheduler. Routine scheduler messages are logged
// at debug level.
func Cron(l zerolog.Logger) cron.Logger {
	return cronLogger{l: l.With().Str("component", "cron").Logger()}
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

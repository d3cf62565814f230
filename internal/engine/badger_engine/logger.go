package badger_engine

import (
	"strings"

	"github.com/dgraph-io/badger"
	"github.com/rs/zerolog"
)

var _ badger.Logger = badgerLogger{}

// badgerLogger routes badger's internal logs to zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func newLogger(l zerolog.Logger) badgerLogger {
	return badgerLogger{
		logger: l.With().Str("subscope", "badger").Logger(),
	}
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(strings.TrimSuffix(format, "\n"), args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn().Msgf(strings.TrimSuffix(format, "\n"), args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Info().Msgf(strings.TrimSuffix(format, "\n"), args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug().Msgf(strings.TrimSuffix(format, "\n"), args...)
}

package main

import (
	"io"
	"time"

	"github.com/rgehrsitz/psupdate/internal/calculation"
	"github.com/rs/zerolog"
)

// zerologLogger implements calculation.Logger on top of zerolog
type zerologLogger struct {
	log zerolog.Logger
}

var _ calculation.Logger = zerologLogger{}

func newLogger(w io.Writer, level string) (zerologLogger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerologLogger{}, err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}
	return zerologLogger{log: zerolog.New(out).Level(lvl).With().Timestamp().Logger()}, nil
}

func (l zerologLogger) Debugf(format string, args ...any) { l.log.Debug().Msgf(format, args...) }
func (l zerologLogger) Infof(format string, args ...any)  { l.log.Info().Msgf(format, args...) }
func (l zerologLogger) Warnf(format string, args ...any)  { l.log.Warn().Msgf(format, args...) }
func (l zerologLogger) Errorf(format string, args ...any) { l.log.Error().Msgf(format, args...) }

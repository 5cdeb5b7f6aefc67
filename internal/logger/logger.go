package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the logging surface used across the application
type Logger interface {
	Log(format string)
	Logf(format string, v ...any)

	Warn(format string)
	Warnf(format string, v ...any)

	Debug(format string)
	Debugf(format string, v ...any)

	Error(format string)
	Errorf(format string, v ...any)
}

// ZeroLogger implements Logger on top of zerolog
type ZeroLogger struct {
	logger zerolog.Logger
}

// New creates a Logger writing human readable lines to w at the given level
func New(w io.Writer, level string) *ZeroLogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	l := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return &ZeroLogger{logger: l}
}

// NewFile opens (or creates) path for appending and returns a Logger writing to it
// together with a close function
func NewFile(path, level string) (*ZeroLogger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return New(f, level), f.Close, nil
}

// Nop returns a Logger that discards everything
func Nop() Logger {
	return &ZeroLogger{logger: zerolog.Nop()}
}

// With returns a child logger carrying an extra string field
func (l *ZeroLogger) With(key, value string) Logger {
	return &ZeroLogger{logger: l.logger.With().Str(key, value).Logger()}
}

func (l *ZeroLogger) Log(format string) {
	l.logger.Info().Msg(format)
}

func (l *ZeroLogger) Logf(format string, v ...any) {
	l.logger.Info().Msgf(format, v...)
}

func (l *ZeroLogger) Warn(format string) {
	l.logger.Warn().Msg(format)
}

func (l *ZeroLogger) Warnf(format string, v ...any) {
	l.logger.Warn().Msgf(format, v...)
}

func (l *ZeroLogger) Debug(format string) {
	l.logger.Debug().Msg(format)
}

func (l *ZeroLogger) Debugf(format string, v ...any) {
	l.logger.Debug().Msgf(format, v...)
}

func (l *ZeroLogger) Error(format string) {
	l.logger.Error().Msg(format)
}

func (l *ZeroLogger) Errorf(format string, v ...any) {
	l.logger.Error().Msgf(format, v...)
}

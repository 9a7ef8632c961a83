// Package logger configures the process-wide zerolog logger.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the global logger used across the application.
var Logger = log.Logger

// Config controls level, output format and caller reporting.
type Config struct {
	Level        string    `json:"level" yaml:"level"`   // debug, info, warn, error
	Format       string    `json:"format" yaml:"format"` // json or pretty
	TimeFormat   string    `json:"time_format" yaml:"time_format"`
	ReportCaller bool      `json:"report_caller" yaml:"report_caller"`
	Output       io.Writer `json:"-" yaml:"-"` // defaults to stdout
}

// Init replaces the global logger according to config.
// An unknown level falls back to info.
func Init(config Config) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	if config.Format == "pretty" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: zerolog.TimeFieldFormat,
		}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if config.ReportCaller {
		ctx = ctx.Caller()
	}

	Logger = ctx.Logger()
	log.Logger = Logger
}

// Debug starts a debug level event.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info starts an info level event.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn starts a warn level event.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error starts an error level event.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Ctx returns the logger stored in ctx, or the global logger when none is set.
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &Logger
}

// WithContext attaches the global logger to ctx.
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}

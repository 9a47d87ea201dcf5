// Package logging provides the leveled logger used across the module.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Logger is the logging surface the rest of the module depends on.
type Logger interface {
	LogLevel() string
	SetLogLevel(level string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type options struct {
	writer io.Writer
	level  string
	pretty bool
}

// Option configures a logger built by New.
type Option func(*options)

// WithWriter sends log output to w. The default is os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

// WithLevel sets the initial level: debug, info, warn or error.
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithPretty switches to human-readable console output.
func WithPretty(pretty bool) Option {
	return func(o *options) { o.pretty = pretty }
}

// ZeroLogger is a Logger backed by zerolog.
type ZeroLogger struct {
	zerolog.Logger
	service string
}

// New returns a zerolog-backed logger tagged with service.
func New(service string, opts ...Option) *ZeroLogger {
	o := &options{writer: os.Stdout, level: "info"}
	for _, opt := range opts {
		opt(o)
	}

	w := o.writer
	if o.pretty {
		w = consoleWriter(o.writer, service)
	}

	z := &ZeroLogger{
		Logger:  zerolog.New(w).With().Timestamp().Str("service", service).Logger(),
		service: service,
	}
	z.SetLogLevel(o.level)
	return z
}

func consoleWriter(out io.Writer, service string) zerolog.ConsoleWriter {
	noColor := true
	if f, ok := out.(*os.File); ok {
		noColor = !term.IsTerminal(int(f.Fd()))
	}

	cw := zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       noColor,
		TimeFormat:    time.TimeOnly,
		FieldsExclude: []string{"service"},
	}
	cw.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("| %-8s| %v", service, i)
	}
	return cw
}

// LogLevel returns the current level name.
func (z *ZeroLogger) LogLevel() string {
	return z.GetLevel().String()
}

// SetLogLevel changes the level. Unknown names fall back to info.
func (z *ZeroLogger) SetLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	z.Logger = z.Logger.Level(lvl)
}

// Debugf logs at debug level.
func (z *ZeroLogger) Debugf(format string, args ...interface{}) {
	z.Logger.Debug().Msgf(format, args...)
}

// Infof logs at info level.
func (z *ZeroLogger) Infof(format string, args ...interface{}) {
	z.Logger.Info().Msgf(format, args...)
}

// Warnf logs at warn level.
func (z *ZeroLogger) Warnf(format string, args ...interface{}) {
	z.Logger.Warn().Msgf(format, args...)
}

// Errorf logs at error level.
func (z *ZeroLogger) Errorf(format string, args ...interface{}) {
	z.Logger.Error().Msgf(format, args...)
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &ZeroLogger{Logger: zerolog.Nop(), service: "nop"}
}

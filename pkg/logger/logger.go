package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// VerboseLevel represents the verbosity level for logging
type VerboseLevel int

const (
	// VerboseSilent means no verbose output
	VerboseSilent VerboseLevel = 0
	// VerboseNormal means standard verbose output (-v)
	VerboseNormal VerboseLevel = 1
	// VerboseVery means detailed debugging output (-vv)
	VerboseVery VerboseLevel = 2
)

// Logger handles verbose output at different levels
type Logger struct {
	level VerboseLevel
	zl    zerolog.Logger
}

// NewLogger creates a new logger with the specified verbosity level writing
// human readable lines to stderr.
func NewLogger(level int) *Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, level)
}

// New creates a logger writing to w. Pass a zerolog.ConsoleWriter for pretty
// output or any io.Writer for JSON lines.
func New(w io.Writer, level int) *Logger {
	vl := VerboseLevel(level)
	return &Logger{
		level: vl,
		zl:    zerolog.New(w).Level(zerologLevel(vl)).With().Timestamp().Logger(),
	}
}

// FromFormat builds a logger from the configured format ("pretty" or "json")
// and level name ("info", "debug", "trace").
func FromFormat(format, level string) *Logger {
	var w io.Writer = os.Stderr
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	return New(w, levelFromName(level))
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{level: VerboseSilent, zl: zerolog.Nop()}
}

func zerologLevel(l VerboseLevel) zerolog.Level {
	switch {
	case l >= VerboseVery:
		return zerolog.TraceLevel
	case l == VerboseNormal:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

func levelFromName(name string) int {
	switch strings.ToLower(name) {
	case "trace":
		return int(VerboseVery)
	case "debug":
		return int(VerboseNormal)
	default:
		return int(VerboseSilent)
	}
}

// Zerolog exposes the underlying zerolog logger (request logging middleware).
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// With returns a child logger carrying a component field.
func (l *Logger) With(component string) *Logger {
	return &Logger{level: l.level, zl: l.zl.With().Str("component", component).Logger()}
}

// IsVerbose returns true if verbose mode is enabled (-v or -vv)
func (l *Logger) IsVerbose() bool {
	return l.level >= VerboseNormal
}

// IsVeryVerbose returns true if very verbose mode is enabled (-vv)
func (l *Logger) IsVeryVerbose() bool {
	return l.level >= VerboseVery
}

// V logs a message at verbose level (-v)
func (l *Logger) V(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// VV logs a message at very verbose level (-vv)
func (l *Logger) VV(format string, args ...interface{}) {
	l.zl.Trace().Msgf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warn logs a recoverable problem
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Err logs err with a message.
func (l *Logger) Err(err error, format string, args ...interface{}) {
	l.zl.Error().Err(err).Msgf(format, args...)
}

// Section logs a section header for very verbose mode
func (l *Logger) Section(title string) {
	l.zl.Trace().Str("section", title).Msg(fmt.Sprintf("=== %s ===", title))
}

// Detail logs a detail line for very verbose mode
func (l *Logger) Detail(format string, args ...interface{}) {
	l.zl.Trace().Bool("detail", true).Msgf("-> "+format, args...)
}

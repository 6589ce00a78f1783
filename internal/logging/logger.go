// Package logging provides structured logging for turnero.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
)

// Logger is the structured logging interface.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...any)
	// Info logs an informational message.
	Info(msg string, args ...any)
	// Warn logs a warning message.
	Warn(msg string, args ...any)
	// Error logs an error message.
	Error(msg string, args ...any)
	// With returns a new logger with additional key-value pairs.
	With(args ...any) Logger
}

// Config controls logger construction.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn, error.
	Level string
	// JSON switches output to the JSON formatter. Text otherwise.
	JSON bool
	// Output is where log lines go. Defaults to stderr.
	Output io.Writer
}

// New creates a Logger with the given configuration. Sensitive values
// (tokens, keys, credentials) are redacted before they reach the sink.
func New(cfg Config) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	cl := clog.NewWithOptions(out, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           parseLevel(cfg.Level),
	})
	if cfg.JSON {
		cl.SetFormatter(clog.JSONFormatter)
	}
	return &loggerImpl{clogger: cl}
}

// parseLevel converts a string level to clog.Level.
func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "info":
		return clog.InfoLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

// loggerImpl is the charmbracelet/log based implementation.
type loggerImpl struct {
	clogger *clog.Logger
}

func (l *loggerImpl) Debug(msg string, args ...any) {
	l.clogger.Debug(msg, redactPairs(args)...)
}

func (l *loggerImpl) Info(msg string, args ...any) {
	l.clogger.Info(msg, redactPairs(args)...)
}

func (l *loggerImpl) Warn(msg string, args ...any) {
	l.clogger.Warn(msg, redactPairs(args)...)
}

func (l *loggerImpl) Error(msg string, args ...any) {
	l.clogger.Error(msg, redactPairs(args)...)
}

func (l *loggerImpl) With(args ...any) Logger {
	return &loggerImpl{clogger: l.clogger.With(redactPairs(args)...)}
}

// Noop is a logger that discards all output.
type Noop struct{}

func (Noop) Debug(msg string, args ...any) {}
func (Noop) Info(msg string, args ...any)  {}
func (Noop) Warn(msg string, args ...any)  {}
func (Noop) Error(msg string, args ...any) {}
func (Noop) With(args ...any) Logger       { return Noop{} }

// Global logger instance.
var (
	globalLogger Logger = Noop{}
	globalMu     sync.RWMutex
)

// SetGlobal installs the global logger used by package-level helpers.
func SetGlobal(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Global returns the global logger, or a no-op logger if none was set.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

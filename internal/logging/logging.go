// Package logging provides a leveled, structured logger on top of log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		// Above every level we emit.
		return slog.LevelError + 4
	}
}

// ParseLevel parses a log level string. Unknown strings map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

const timeFormat = "15:04:05.000"

// swapWriter lets SetOutput redirect a logger and every logger derived
// from it with With.
type swapWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *swapWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *swapWriter) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

// Logger writes key/value records as slog text lines.
type Logger struct {
	level *slog.LevelVar
	out   *swapWriter
	sl    *slog.Logger
}

// New creates a logger writing to stderr.
func New(level Level) *Logger {
	return newLogger(level, os.Stderr)
}

func newLogger(level Level, w io.Writer) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(level.slog())
	out := &swapWriter{w: w}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:       lv,
		ReplaceAttr: shortTime,
	})
	return &Logger{level: lv, out: out, sl: slog.New(h)}
}

func shortTime(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return slog.String(slog.TimeKey, a.Value.Time().Format(timeFormat))
	}
	return a
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.set(w)
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level.slog())
}

// Enabled reports whether records at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level.slog() >= l.level.Level()
}

// With returns a logger that adds args to every record. It shares the
// parent's level and output.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{level: l.level, out: l.out, sl: l.sl.With(args...)}
}

// Slog exposes the underlying slog logger.
func (l *Logger) Slog() *slog.Logger {
	return l.sl
}

// Debug logs a debug message with key/value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.sl.Debug(msg, args...)
}

// Info logs an info message with key/value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.sl.Info(msg, args...)
}

// Warn logs a warning with key/value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.sl.Warn(msg, args...)
}

// Error logs an error message with key/value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.sl.Error(msg, args...)
}

// Since is a helper for logging elapsed time as a duration attribute.
func Since(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start).Round(time.Microsecond))
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return newLogger(LevelError+1, io.Discard)
}

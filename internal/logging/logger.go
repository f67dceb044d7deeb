// Package logging writes bracket-prefixed progress lines for pipeline runs.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level filters what a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps debug/info/warn/error to a Level; anything else is info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is a leveled wrapper over the standard library logger.
type Logger struct {
	out    *log.Logger
	w      io.Writer
	level  Level
	prefix string
}

// New creates a logger writing to w (stderr when nil).
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		out:   log.New(w, "", log.LstdFlags),
		w:     w,
		level: ParseLevel(level),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, "error")
}

// With returns a child logger whose lines carry an extra [component] tag.
func (l *Logger) With(component string) *Logger {
	if l == nil {
		return nil
	}
	child := *l
	child.prefix = l.prefix + "[" + component + "] "
	return &child
}

// Level reports the configured level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelError
	}
	return l.level
}

// Writer exposes the destination so other loggers (gorm) can share it.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return io.Discard
	}
	return l.w
}

func (l *Logger) logf(level Level, tag, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	l.out.Printf(tag+l.prefix+format, args...)
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, "DEBUG ", format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, "", format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, "WARN ", format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, "ERROR ", format, args...) }

// LogTransform logs a normalization or merge step.
func (l *Logger) LogTransform(source string, inputCount, outputCount int, duration time.Duration) {
	l.Infof("%s: transformed %d -> %d records in %dms",
		source, inputCount, outputCount, duration.Milliseconds())
}

// LogWrite logs an artifact written to disk.
func (l *Logger) LogWrite(path string, count int, duration time.Duration) {
	l.Infof("wrote %d records to %s in %dms", count, path, duration.Milliseconds())
}

// LogLoad logs rows loaded into a table.
func (l *Logger) LogLoad(table string, count int64, duration time.Duration) {
	l.Infof("loaded %d rows into %s in %dms", count, table, duration.Milliseconds())
}

// LogError logs a failed operation.
func (l *Logger) LogError(operation string, err error) {
	l.Errorf("%s error: %v", operation, err)
}

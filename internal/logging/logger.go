// Package logging provides the process-wide file logger for rjos-go.
//
// There is one sink per process, opened in append mode. Every record is
// written as
//
//	[YYYY-MM-DD HH:MM:SS] LEVEL: message\n
//
// and writes are serialized by a mutex. Messages below the configured
// level are dropped before formatting.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Level represents the available log levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the record tag for the level.
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

const timestampLayout = "2006-01-02 15:04:05"

// Logger is a severity-gated append-only file sink.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	level   Level
	enabled bool
}

var (
	defaultLogger = &Logger{level: LevelDebug, enabled: true}
	mu            sync.RWMutex
)

// New opens path in append mode and returns a logger gated at level.
func New(path string, level Level) (*Logger, error) {
	l := &Logger{level: level, enabled: true}
	if err := l.Reopen(path); err != nil {
		return nil, err
	}
	return l, nil
}

// Default returns the process-wide logger. Until Init is called it has no
// file attached and records are dropped.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// Init points the process-wide logger at path. May be called repeatedly;
// each call closes the prior file.
func Init(path string, level Level) error {
	l := Default()
	l.mu.Lock()
	l.level = level
	l.enabled = true
	l.mu.Unlock()
	return l.Reopen(path)
}

// Destroy closes the process-wide logger's file.
func Destroy() {
	Default().Close()
}

// Reopen switches the logger to a new file, closing any prior one.
func (l *Logger) Reopen(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open %s: %w", path, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
	}
	l.file = f
	return nil
}

// Close closes the underlying file. The logger remains usable; subsequent
// records are dropped until Reopen.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// SetLevel updates the severity gate.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Enable turns the sink on or off without touching the file.
func (l *Logger) Enable(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// Log writes one record if level passes the gate. The gate is checked
// before formatting so suppressed messages cost nothing.
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level || !l.enabled || l.file == nil {
		return
	}
	ts := time.Now().Format(timestampLayout)
	fmt.Fprintf(l.file, "[%s] %s: ", ts, level)
	fmt.Fprintf(l.file, format, args...)
	fmt.Fprint(l.file, "\n")
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Log(LevelDebug, format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Log(LevelInfo, format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Log(LevelWarn, format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Log(LevelError, format, args...)
}

// Printf logs at info level for compatibility with the Logger interface.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.Infof(format, args...)
}

// Global convenience functions
func Debugf(format string, args ...interface{}) {
	Default().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	Default().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Default().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Default().Errorf(format, args...)
}

package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

var (
	currentLevel LogLevel
	levelOnce    sync.Once
	levelMu      sync.RWMutex
)

// parseLevel maps the DEBUG and LOG_LEVEL values to a level.
// DEBUG wins when it holds a truthy value.
func parseLevel(debug, level string) LogLevel {
	switch strings.ToLower(debug) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}

	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func initLevel() {
	levelOnce.Do(func() {
		levelMu.Lock()
		currentLevel = parseLevel(os.Getenv("DEBUG"), os.Getenv("LOG_LEVEL"))
		levelMu.Unlock()
	})
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	levelMu.RLock()
	defer levelMu.RUnlock()
	return currentLevel
}

// SetLevel overrides the level read from the environment.
func SetLevel(level LogLevel) {
	initLevel()
	levelMu.Lock()
	currentLevel = level
	levelMu.Unlock()
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func output(level LogLevel, tag, format string, args ...interface{}) {
	if GetLevel() <= level {
		log.Printf(tag+format, args...)
	}
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	output(LevelDebug, "[DEBUG] ", format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	output(LevelInfo, "[INFO] ", format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	output(LevelWarn, "[WARN] ", format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	output(LevelError, "[ERROR] ", format, args...)
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// Logger writes leveled messages with a fixed prefix, e.g. "[INFO] [ingest 1a2b3c4d] ...".
// The zero value logs without a prefix.
type Logger struct {
	prefix string
}

// With returns a Logger that prefixes every message with "[prefix] ".
func With(prefix string) Logger {
	return Logger{prefix: "[" + sanitizePrefix(prefix) + "] "}
}

// Prefix returns the bracketed prefix, or "" for the zero Logger.
func (l Logger) Prefix() string {
	return l.prefix
}

// Debug logs a prefixed debug message
func (l Logger) Debug(format string, args ...interface{}) {
	output(LevelDebug, "[DEBUG] "+l.prefix, format, args...)
}

// Info logs a prefixed info message
func (l Logger) Info(format string, args ...interface{}) {
	output(LevelInfo, "[INFO] "+l.prefix, format, args...)
}

// Warn logs a prefixed warning message
func (l Logger) Warn(format string, args ...interface{}) {
	output(LevelWarn, "[WARN] "+l.prefix, format, args...)
}

// Error logs a prefixed error message
func (l Logger) Error(format string, args ...interface{}) {
	output(LevelError, "[ERROR] "+l.prefix, format, args...)
}

// sanitizePrefix keeps prefixes on one line and drops percent signs so a
// prefix can never be read as a format verb.
func sanitizePrefix(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '%':
			return -1
		case r < 0x20:
			return ' '
		}
		return r
	}, s)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents a log level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of a log level
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

// ParseLevel parses a log level string
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// Logger is a leveled printf-style logger. Output is discarded until a file
// or writer is attached so the wizard TUI never gets scribbled over.
type Logger struct {
	mu     sync.Mutex
	level  Level
	out    *log.Logger
	file   *os.File
	prefix string
}

// Default is the process-wide logger used by the package-level helpers.
var Default *Logger

func init() {
	Default = New()
}

// New creates a logger configured from SETUPWIZARD_LOG_LEVEL and
// SETUPWIZARD_LOG_FILE. Invalid values are ignored.
func New() *Logger {
	l := &Logger{
		level: LevelInfo,
		out:   log.New(io.Discard, "", log.LstdFlags),
	}
	if lvl, err := ParseLevel(os.Getenv("SETUPWIZARD_LOG_LEVEL")); err == nil {
		l.level = lvl
	}
	if path := os.Getenv("SETUPWIZARD_LOG_FILE"); path != "" {
		_ = l.openFile(path)
	}
	return l
}

// Configure applies a level and log file, typically from the loaded config.
// An empty path leaves the current output untouched.
func (l *Logger) Configure(level, path string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)
	if path == "" {
		return nil
	}
	return l.openFile(path)
}

func (l *Logger) openFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
	}
	l.file = f
	l.out.SetOutput(f)
	return nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.out.SetOutput(io.Discard)
	return err
}

// SetLevel sets the minimum level that is written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects output to w.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.SetOutput(w)
}

// Named returns a logger sharing l's output that tags each line with name.
func (l *Logger) Named(name string) *Named {
	return &Named{parent: l, name: name}
}

func (l *Logger) Debug(format string, v ...any) { l.write(LevelDebug, "", format, v...) }
func (l *Logger) Info(format string, v ...any)  { l.write(LevelInfo, "", format, v...) }
func (l *Logger) Warn(format string, v ...any)  { l.write(LevelWarn, "", format, v...) }
func (l *Logger) Error(format string, v ...any) { l.write(LevelError, "", format, v...) }

func (l *Logger) write(level Level, name, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	msg := fmt.Sprintf(format, v...)
	if name != "" {
		l.out.Printf("[%s] %s: %s", level, name, msg)
		return
	}
	l.out.Printf("[%s] %s", level, msg)
}

// Named is a component-tagged view of a Logger.
type Named struct {
	parent *Logger
	name   string
}

func (n *Named) Debug(format string, v ...any) { n.parent.write(LevelDebug, n.name, format, v...) }
func (n *Named) Info(format string, v ...any)  { n.parent.write(LevelInfo, n.name, format, v...) }
func (n *Named) Warn(format string, v ...any)  { n.parent.write(LevelWarn, n.name, format, v...) }
func (n *Named) Error(format string, v ...any) { n.parent.write(LevelError, n.name, format, v...) }

// Package-level helpers using Default.

func Debug(format string, v ...any) { Default.Debug(format, v...) }
func Info(format string, v ...any)  { Default.Info(format, v...) }
func Warn(format string, v ...any)  { Default.Warn(format, v...) }
func Error(format string, v ...any) { Default.Error(format, v...) }

// For returns a component-tagged view of Default.
func For(name string) *Named { return Default.Named(name) }

// Close closes the default logger
func Close() error {
	return Default.Close()
}

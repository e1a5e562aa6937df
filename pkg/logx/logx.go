// Package logx is the structured logging layer used by every module.
// It exposes a package-level logger configured from the environment plus
// leveled, field-based entries for request and audit logging.
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log line.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelOff
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
	case LevelFatal:
		return "FATAL"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a string (case-insensitive) to a Level. Unknown values
// fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	case "OFF", "NONE":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Fields is a set of structured key/value pairs attached to a log line.
type Fields map[string]any

// Logger writes formatted log lines above its configured level.
type Logger struct {
	mu        sync.Mutex
	level     Level
	out       io.Writer
	formatter Formatter
	exitFn    func(int)
}

// Config controls logger construction.
type Config struct {
	Level  Level
	Format string // "console" or "json"
	Colors bool
	Output io.Writer
}

// ConfigFromEnv builds a Config from LOG_LEVEL, LOG_FORMAT and LOG_COLORS.
func ConfigFromEnv() Config {
	cfg := Config{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: strings.ToLower(os.Getenv("LOG_FORMAT")),
		Colors: os.Getenv("LOG_COLORS") != "false",
		Output: os.Stdout,
	}
	if cfg.Format == "" {
		cfg.Format = "console"
	}
	return cfg
}

// NewLogger creates a logger from the given config.
func NewLogger(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	var f Formatter
	if cfg.Format == "json" {
		f = &JSONFormatter{}
	} else {
		f = &ConsoleFormatter{Colors: cfg.Colors}
	}
	return &Logger{
		level:     cfg.Level,
		out:       out,
		formatter: f,
		exitFn:    os.Exit,
	}
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// SetOutput redirects log output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	l.out = w
	l.mu.Unlock()
}

func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	line := l.formatter.Format(Record{
		Time:   time.Now(),
		Level:  level,
		Msg:    msg,
		Fields: fields,
		Err:    err,
	})
	fmt.Fprintln(l.out, line)
}

func (l *Logger) exit(code int) { l.exitFn(code) }

// ---------------------------------------------------------------------------
// Package-level API
// ---------------------------------------------------------------------------

var defaultLogger = NewLogger(ConfigFromEnv())

// SetDefaultLogger replaces the package-level logger.
func SetDefaultLogger(l *Logger) { defaultLogger = l }

// SetLevel sets the level of the package-level logger.
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

// SetOutput sets the output of the package-level logger.
func SetOutput(w io.Writer) { defaultLogger.SetOutput(w) }

func Debug(msg string) { defaultLogger.log(LevelDebug, msg, nil, nil) }
func Info(msg string)  { defaultLogger.log(LevelInfo, msg, nil, nil) }
func Warn(msg string)  { defaultLogger.log(LevelWarn, msg, nil, nil) }
func Error(msg string) { defaultLogger.log(LevelError, msg, nil, nil) }

// Fatal logs and exits the process.
func Fatal(msg string) {
	defaultLogger.log(LevelFatal, msg, nil, nil)
	defaultLogger.exit(1)
}

func Debugf(format string, args ...any) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil, nil)
}

func Infof(format string, args ...any) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil, nil)
}

func Warnf(format string, args ...any) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil, nil)
}

func Errorf(format string, args ...any) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil, nil)
}

func Fatalf(format string, args ...any) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil, nil)
	defaultLogger.exit(1)
}

// WithFields starts a structured entry on the package-level logger.
func WithFields(fields Fields) *Entry {
	return newEntry(defaultLogger).WithFields(fields)
}

// WithField starts a structured entry with a single field.
func WithField(key string, value any) *Entry {
	return newEntry(defaultLogger).WithField(key, value)
}

// WithError starts a structured entry carrying an error.
func WithError(err error) *Entry {
	return newEntry(defaultLogger).WithError(err)
}

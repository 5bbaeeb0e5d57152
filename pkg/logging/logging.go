// Package logging provides the structured logger used across the bot.
//
// Entries carry a level, a message and a set of key/value fields, and are written
// either as single-line JSON or as human-readable text. Loggers created with With
// share the parent's output and level but carry extra persistent fields, which is
// how per-message handlers attach a message id and correlation id to every line.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// Logger is the logging interface handed to every component
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Config selects level, format and destination of a logger
type Config struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Output string `json:"output"`
}

// DefaultConfig logs info and above as text on stdout
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Output: "stdout"}
}

// Validate checks level and format names
func (c Config) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, fatal (got %q)", c.Level)
	}
	switch c.Format {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log format must be one of json, text, console (got %q)", c.Format)
	}
	return nil
}

// Entry is one serialized log line
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

// StructuredLogger implements Logger
type StructuredLogger struct {
	level  Level
	format string
	out    io.Writer
	// writes from loggers derived via With go through the same mutex
	mu     *sync.Mutex
	fields map[string]interface{}
	caller bool
}

// New creates a logger from config
func New(cfg Config) *StructuredLogger {
	var out io.Writer = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}
	return NewWithWriter(cfg, out)
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(cfg Config, w io.Writer) *StructuredLogger {
	return &StructuredLogger{
		level:  ParseLevel(cfg.Level),
		format: cfg.Format,
		out:    w,
		mu:     &sync.Mutex{},
		fields: make(map[string]interface{}),
		caller: ParseLevel(cfg.Level) == DebugLevel,
	}
}

// Level returns the minimum level written
func (l *StructuredLogger) Level() Level {
	return l.level
}

func (l *StructuredLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *StructuredLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *StructuredLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *StructuredLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// Fatal logs and exits the process
func (l *StructuredLogger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, fields)
	os.Exit(1)
}

// With returns a child logger carrying additional fields
func (l *StructuredLogger) With(fields ...Field) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	return &StructuredLogger{
		level:  l.level,
		format: l.format,
		out:    l.out,
		mu:     l.mu,
		fields: merged,
		caller: l.caller,
	}
}

func (l *StructuredLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Message:   msg,
		Fields:    make(map[string]interface{}, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}

	if l.caller {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.Caller = fmt.Sprintf("%s:%d", file, line)
		}
	}

	var line string
	if l.format == "json" {
		data, err := json.Marshal(entry)
		if err != nil {
			line = fmt.Sprintf("ERROR: failed to marshal log entry: %v\n", err)
		} else {
			line = string(data) + "\n"
		}
	} else {
		line = formatText(entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, line)
}

// formatText renders fields in key order so output is stable
func formatText(entry Entry) string {
	var b strings.Builder

	b.WriteString(entry.Timestamp.Format("2006-01-02 15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(entry.Level)
	b.WriteString("] ")
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, entry.Fields[k])
		}
		b.WriteString("}")
	}

	if entry.Caller != "" {
		b.WriteString(" (")
		b.WriteString(entry.Caller)
		b.WriteString(")")
	}

	b.WriteString("\n")
	return b.String()
}

// NullLogger discards everything (useful for testing)
func NullLogger() Logger {
	return NewWithWriter(Config{Level: "fatal", Format: "text"}, io.Discard)
}

// StdLogAdapter forwards output of the standard log package to a Logger
type StdLogAdapter struct {
	logger Logger
	level  Level
}

// NewStdLogAdapter creates an adapter that logs every line at the given level
func NewStdLogAdapter(logger Logger, level Level) *StdLogAdapter {
	return &StdLogAdapter{logger: logger, level: level}
}

// Write implements io.Writer
func (a *StdLogAdapter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}
	switch a.level {
	case DebugLevel:
		a.logger.Debug(msg)
	case WarnLevel:
		a.logger.Warn(msg)
	case ErrorLevel, FatalLevel:
		a.logger.Error(msg)
	default:
		a.logger.Info(msg)
	}
	return len(p), nil
}

// SetAsStdLogger makes this adapter the output of the standard log package
func (a *StdLogAdapter) SetAsStdLogger() {
	log.SetOutput(a)
	log.SetFlags(0)
}

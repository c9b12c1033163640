// Package logging provides the structured logger used across tether. It is a
// thin layer over log/slog that carries a component name and persistent
// fields.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel is a severity threshold. The values match slog's levels.
type LogLevel int

const (
	LevelDebug = LogLevel(slog.LevelDebug)
	LevelInfo  = LogLevel(slog.LevelInfo)
	LevelWarn  = LogLevel(slog.LevelWarn)
	LevelError = LogLevel(slog.LevelError)
)

func (l LogLevel) String() string {
	return slog.Level(l).String()
}

// ParseLevel converts a configuration string into a LogLevel. An empty
// string is info.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is the logging interface handed to every component.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level LogLevel
	// Format is "json" or "text".
	Format    string
	Output    io.Writer
	AddSource bool
	Component string
}

// SlogLogger implements Logger on a *slog.Logger. The component is kept
// apart from the other fields so WithComponent replaces it.
type SlogLogger struct {
	base      *slog.Logger
	component string
}

// NewLogger creates a logger writing to cfg.Output, stderr by default.
func NewLogger(cfg *LoggerConfig) *SlogLogger {
	if cfg == nil {
		cfg = &LoggerConfig{Level: LevelInfo}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.Level(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	}

	return &SlogLogger{base: slog.New(handler), component: cfg.Component}
}

func (l *SlogLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelDebug, nil, msg, fields)
}

func (l *SlogLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelInfo, nil, msg, fields)
}

func (l *SlogLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelWarn, err, msg, fields)
}

func (l *SlogLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelError, err, msg, fields)
}

// With returns a logger that adds fields, given as key/value pairs, to
// every entry.
func (l *SlogLogger) With(fields ...interface{}) Logger {
	return &SlogLogger{base: l.base.With(pairs(fields)...), component: l.component}
}

// WithComponent returns a logger tagging entries with component.
func (l *SlogLogger) WithComponent(component string) Logger {
	return &SlogLogger{base: l.base, component: component}
}

func (l *SlogLogger) log(ctx context.Context, level slog.Level, err error, msg string, fields []interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.base.Enabled(ctx, level) {
		return
	}

	args := make([]any, 0, len(fields)+4)
	if l.component != "" {
		args = append(args, "component", l.component)
	}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.base.Log(ctx, level, msg, append(args, pairs(fields)...)...)
}

// pairs drops a trailing key without a value and pairs whose key is not a
// string.
func pairs(fields []interface{}) []any {
	out := make([]any, 0, len(fields))
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			out = append(out, key, fields[i+1])
		}
	}
	return out
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything. It is the default
// for library entry points that were not handed a logger.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, ...interface{})        {}
func (nopLogger) Info(context.Context, string, ...interface{})         {}
func (nopLogger) Warn(context.Context, error, string, ...interface{})  {}
func (nopLogger) Error(context.Context, error, string, ...interface{}) {}
func (n nopLogger) With(...interface{}) Logger                         { return n }
func (n nopLogger) WithComponent(string) Logger                        { return n }

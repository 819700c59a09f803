// Package logger provides a simple, clean logging interface.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Environment names understood by the logger.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Logger defines the logging interface.
type Logger interface {
	// Context-aware variants
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
	With(fields ...Field) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors.
func String(key, val string) Field          { return Field{Key: key, Value: val} }
func Int(key string, val int) Field         { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// slogLogger implements Logger using slog.
type slogLogger struct {
	Logger *slog.Logger
}

func (l *slogLogger) Named(name string) Logger {
	return &slogLogger{Logger: l.Logger.With(slog.String("logger", name))}
}

func (l *slogLogger) With(fields ...Field) Logger {
	attrs := convertFields(fields)
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return &slogLogger{Logger: l.Logger.With(args...)}
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.Logger.LogAttrs(ctx, slog.LevelInfo, msg, convertFields(fields)...)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.Logger.LogAttrs(ctx, slog.LevelError, msg, convertFields(fields)...)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.Logger.LogAttrs(ctx, slog.LevelDebug, msg, convertFields(fields)...)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.Logger.LogAttrs(ctx, slog.LevelWarn, msg, convertFields(fields)...)
}

func (l *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.Logger.LogAttrs(ctx, slog.LevelError, msg, convertFields(fields)...)
	os.Exit(1)
}

// convertFields converts our Field type to slog.Attr.
func convertFields(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}

// New builds a Logger from options. The level is shared through the
// returned LevelVar-backed handler, so SetLevel* calls on the global
// logger affect only the global instance.
func New(opts ...Option) (Logger, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	lv := o.levelVar
	if lv == nil {
		lv = new(slog.LevelVar)
	}
	level, err := ParseLevel(o.level)
	if err != nil {
		return nil, err
	}
	lv.Set(level)

	h := &streamHandler{
		level: lv,
		out:   newFormatHandler(o, o.stdout, lv),
		err:   newFormatHandler(o, o.stderr, lv),
	}
	return &slogLogger{Logger: slog.New(h)}, nil
}

// newFormatHandler picks the line format for the configured environment.
func newFormatHandler(o options, w io.Writer, lv *slog.LevelVar) slog.Handler {
	if o.environment == EnvDevelopment {
		return &lineHandler{w: w, level: lv, mu: new(sync.Mutex)}
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv, ReplaceAttr: replaceJSONAttr})
	return h.WithAttrs([]slog.Attr{
		slog.String("service", o.service),
		slog.String("version", o.version),
		slog.String("environment", o.environment),
	})
}

// replaceJSONAttr renames the built-in slog keys to the record layout
// used by log aggregation.
func replaceJSONAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String("timestamp", a.Value.Time().UTC().Format(timestampLayout))
	case slog.MessageKey:
		return slog.Attr{Key: "message", Value: a.Value}
	case slog.LevelKey:
		return slog.String("level", levelName(a.Value.Any()))
	}
	return a
}

func levelName(v any) string {
	if l, ok := v.(slog.Level); ok {
		switch {
		case l >= slog.LevelError:
			return "ERROR"
		case l >= slog.LevelWarn:
			return "WARN"
		case l >= slog.LevelInfo:
			return "INFO"
		default:
			return "DEBUG"
		}
	}
	return strings.ToUpper(fmt.Sprint(v))
}

var global Logger
var levelVar slog.LevelVar

// Init initializes the global logger.
func Init(opts ...Option) error {
	opts = append([]Option{withLevelVar(&levelVar)}, opts...)
	l, err := New(opts...)
	if err != nil {
		return err
	}
	global = l
	return nil
}

// Get returns the global logger.
func Get() Logger {
	if global == nil {
		// The logger should be explicitly initialized by the application
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries.
func Sync() error {
	// slog does not buffer; nothing to flush
	return nil
}

// SetLevel updates the current logging level for the global logger handler.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	SetLevel(l)
	return nil
}

// ParseLevel maps a level name onto its slog level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %s", ErrUnknownLevel, level)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timestampLayout)
}

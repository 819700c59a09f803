package logger

import (
	"io"
	"log/slog"
	"os"
)

type options struct {
	level       string
	environment string
	service     string
	version     string
	stdout      io.Writer
	stderr      io.Writer
	levelVar    *slog.LevelVar
}

func defaultOptions() options {
	return options{
		level:       "info",
		environment: EnvDevelopment,
		service:     "sample-app",
		version:     "1.0.0",
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
}

// Option applies a configuration option to the logger.
type Option func(*options)

// WithLevel sets the minimum level by name.
func WithLevel(level string) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithEnvironment selects the output format. "development" writes
// human readable lines, anything else writes JSON records.
func WithEnvironment(env string) Option {
	return func(o *options) {
		if env != "" {
			o.environment = env
		}
	}
}

// WithService sets the static identity fields attached to JSON records.
func WithService(name, version string) Option {
	return func(o *options) {
		if name != "" {
			o.service = name
		}
		if version != "" {
			o.version = version
		}
	}
}

// WithOutput overrides the info/debug and warn/error destinations.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		if stdout != nil {
			o.stdout = stdout
		}
		if stderr != nil {
			o.stderr = stderr
		}
	}
}

func withLevelVar(lv *slog.LevelVar) Option {
	return func(o *options) {
		o.levelVar = lv
	}
}

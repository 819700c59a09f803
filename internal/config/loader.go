package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileEnv names the environment variable holding an optional YAML config path.
const FileEnv = "CONFIG_FILE"

// envSections are the environment prefixes mapped onto nested keys,
// e.g. DATABASE_HOST -> database.host.
var envSections = []string{"database", "storage", "queue", "cache", "status", "http", "metrics"}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if CONFIG_FILE is set
//  3. env (PORT, NODE_ENV, LOG_LEVEL, DATABASE_*, STORAGE_*, QUEUE_*, CACHE_*, STATUS_*, HTTP_*, METRICS_*)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if len(cfg.Platform.Services) == 0 {
		cfg.Platform.Services = DefaultServices()
	}
	if cfg.Platform.Credentials == nil {
		cfg.Platform.Credentials = DefaultCredentials()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// envKey maps a recognized environment variable onto its koanf key.
// Unrecognized variables return an empty key and are skipped.
func envKey(key, value string) (string, interface{}) {
	k := strings.ToLower(key)
	switch k {
	case "port", "log_level":
		return k, value
	case "node_env":
		return "environment", value
	case "bind_host":
		return "host", value
	}

	for _, section := range envSections {
		field, ok := strings.CutPrefix(k, section+"_")
		if !ok || field == "" {
			continue
		}
		switch field {
		case "enabled":
			// Only the literal "true" enables a feature.
			return section + "." + field, value == "true"
		case "buckets", "queues":
			return section + "." + field, splitList(value)
		}
		return section + "." + field, value
	}
	return "", nil
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

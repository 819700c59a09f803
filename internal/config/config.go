// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and the
//   process environment on top of them.
// - A loaded Config is treated as immutable and passed by pointer into
//   the components that need it.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"time"
)

// Config contains process configuration shared by both services.
type Config struct {
	// Port is the HTTP listen port (PORT).
	Port int `koanf:"port"`

	// Host is the listen interface.
	Host string `koanf:"host"`

	// Environment selects development or production behavior (NODE_ENV).
	Environment string `koanf:"environment"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	Database DatabaseConfig `koanf:"database"`
	Storage  StorageConfig  `koanf:"storage"`
	Queue    QueueConfig    `koanf:"queue"`
	Cache    CacheConfig    `koanf:"cache"`

	// HTTP tunes the listening server.
	HTTP HTTPConfig `koanf:"http"`

	// Status tunes the dashboard's upstream polling.
	Status StatusConfig `koanf:"status"`

	// Metrics shapes the sample service's Prometheus series.
	Metrics MetricsConfig `koanf:"metrics"`

	// Platform is the static platform description served by the dashboard.
	Platform PlatformConfig `koanf:"platform"`

	// App identifies the sample service.
	App AppConfig `koanf:"app"`
}

// DatabaseConfig mirrors DATABASE_*.
type DatabaseConfig struct {
	Enabled bool   `koanf:"enabled" json:"enabled"`
	Host    string `koanf:"host" json:"host,omitempty"`
	Port    string `koanf:"port" json:"port,omitempty"`
	Name    string `koanf:"name" json:"name,omitempty"`
}

// StorageConfig mirrors STORAGE_*.
type StorageConfig struct {
	Enabled  bool     `koanf:"enabled" json:"enabled"`
	Endpoint string   `koanf:"endpoint" json:"endpoint,omitempty"`
	Buckets  []string `koanf:"buckets" json:"buckets"`
}

// QueueConfig mirrors QUEUE_*.
type QueueConfig struct {
	Enabled  bool     `koanf:"enabled" json:"enabled"`
	Endpoint string   `koanf:"endpoint" json:"endpoint,omitempty"`
	Queues   []string `koanf:"queues" json:"queues"`
}

// CacheConfig mirrors CACHE_*.
type CacheConfig struct {
	Enabled  bool   `koanf:"enabled" json:"enabled"`
	Endpoint string `koanf:"endpoint" json:"endpoint,omitempty"`
	Port     string `koanf:"port" json:"port,omitempty"`
}

// StatusConfig controls the service status fan-out.
type StatusConfig struct {
	// Timeout bounds every individual upstream check.
	Timeout time.Duration `koanf:"timeout"`

	// Concurrency caps simultaneous checks; 0 means one per service.
	Concurrency int `koanf:"concurrency"`

	// StreamInterval is the push period of the status stream.
	StreamInterval time.Duration `koanf:"stream_interval"`
}

// MaxPollDuration bounds one full poll of n services: with Concurrency
// slots every check may still run until Timeout.
func (s StatusConfig) MaxPollDuration(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	rounds := 1
	if s.Concurrency > 0 && s.Concurrency < n {
		rounds = (n + s.Concurrency - 1) / s.Concurrency
	}
	return time.Duration(rounds) * s.Timeout
}

// HTTPConfig holds the server timeouts.
type HTTPConfig struct {
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// MetricsConfig controls metric naming and histogram layout.
type MetricsConfig struct {
	Namespace   string            `koanf:"namespace"`
	Subsystem   string            `koanf:"subsystem"`
	Buckets     []float64         `koanf:"buckets"`
	ConstLabels map[string]string `koanf:"const_labels"`
}

// PlatformConfig is the static platform description.
type PlatformConfig struct {
	Name        string                       `koanf:"name"`
	Version     string                       `koanf:"version"`
	Services    []ServiceConfig              `koanf:"services"`
	Credentials map[string]map[string]string `koanf:"credentials"`
}

// ServiceConfig describes one polled upstream service.
type ServiceConfig struct {
	Key         string `koanf:"key"`
	Name        string `koanf:"name"`
	URL         string `koanf:"url"`
	Description string `koanf:"description"`
	Icon        string `koanf:"icon"`
}

// AppConfig identifies the sample service.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Description string `koanf:"description"`
	Platform    string `koanf:"platform"`
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		Port:        8080,
		Host:        "0.0.0.0",
		Environment: EnvDevelopment,
		LogLevel:    "info",
		HTTP: HTTPConfig{
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Status: StatusConfig{
			Timeout:        5 * time.Second,
			StreamInterval: 30 * time.Second,
		},
		Platform: PlatformConfig{
			Name:    "Comind-Ops Platform",
			Version: "1.0.0",
		},
		App: AppConfig{
			Name:        "sample-app",
			Version:     "1.0.0",
			Description: "Sample application demonstrating Comind-Ops Platform capabilities",
			Platform:    "comind-ops",
		},
	}
}

// DefaultServices returns the platform services polled when no file
// configures them.
func DefaultServices() []ServiceConfig {
	return []ServiceConfig{
		{
			Key:         "argocd",
			Name:        "ArgoCD",
			URL:         "http://argocd.dev.127.0.0.1.nip.io:8080",
			Description: "GitOps Continuous Delivery",
			Icon:        "🔄",
		},
		{
			Key:         "minio",
			Name:        "MinIO Console",
			URL:         "http://localhost:9001",
			Description: "Object Storage Management",
			Icon:        "💾",
		},
		{
			Key:         "registry",
			Name:        "Container Registry",
			URL:         "http://registry.dev.127.0.0.1.nip.io:8080",
			Description: "Private Container Registry",
			Icon:        "📦",
		},
		{
			Key:         "elasticmq",
			Name:        "ElasticMQ",
			URL:         "http://elasticmq.dev.127.0.0.1.nip.io:8080",
			Description: "Message Queue Service",
			Icon:        "📬",
		},
	}
}

// DefaultCredentials returns the development credentials shown on the dashboard.
func DefaultCredentials() map[string]map[string]string {
	return map[string]map[string]string{
		"argocd": {
			"username": "admin",
			"note":     "Password: Check ArgoCD secret or use kubectl",
		},
		"minio": {
			"username": "comind_ops_minio_admin",
			"password": "comind_ops_minio_password",
		},
		"postgresql": {
			"host":     "localhost:5434",
			"username": "comind_ops_user",
			"password": "comind_ops_password",
			"database": "comind_ops_dev",
		},
	}
}

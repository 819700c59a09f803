// Package probe evaluates the sample service's dependency checks and
// folds them into health and readiness reports.
//
// Every check is a pure function of configuration and is re-evaluated on
// each call; nothing is cached between probes.
package probe

import (
	"time"

	"github.com/okian/comind/internal/config"
)

// Status is the outcome of one dependency check.
type Status string

// Check outcomes.
const (
	StatusOK       Status = "ok"
	StatusError    Status = "error"
	StatusDisabled Status = "disabled"
)

// Aggregate statuses.
const (
	HealthOK      = "ok"
	HealthError   = "error"
	ReadyReady    = "ready"
	ReadyNotReady = "not_ready"
)

const defaultCachePort = "6379"

// Result is a single check outcome with the configuration it echoes.
type Result struct {
	Status   Status   `json:"status"`
	Message  string   `json:"message,omitempty"`
	Host     string   `json:"host,omitempty"`
	Port     string   `json:"port,omitempty"`
	Database string   `json:"database,omitempty"`
	Endpoint string   `json:"endpoint,omitempty"`
	Buckets  []string `json:"buckets,omitempty"`
	Queues   []string `json:"queues,omitempty"`
}

// Checks holds the four dependency results in a fixed order.
type Checks struct {
	Database Result `json:"database"`
	Storage  Result `json:"storage"`
	Queue    Result `json:"queue"`
	Cache    Result `json:"cache"`
}

func (c Checks) all() []Result {
	return []Result{c.Database, c.Storage, c.Queue, c.Cache}
}

// Evaluate runs every dependency check against cfg.
func Evaluate(cfg *config.Config) Checks {
	return Checks{
		Database: Database(cfg.Database),
		Storage:  Storage(cfg.Storage),
		Queue:    Queue(cfg.Queue),
		Cache:    Cache(cfg.Cache),
	}
}

// Database requires a host and a port once enabled.
func Database(c config.DatabaseConfig) Result {
	if !c.Enabled {
		return Result{Status: StatusDisabled}
	}
	if c.Host == "" || c.Port == "" {
		return Result{Status: StatusError, Message: "Database connection not configured"}
	}
	name := c.Name
	if name == "" {
		name = "default"
	}
	return Result{Status: StatusOK, Host: c.Host, Port: c.Port, Database: name}
}

// Storage requires an endpoint once enabled.
func Storage(c config.StorageConfig) Result {
	if !c.Enabled {
		return Result{Status: StatusDisabled}
	}
	if c.Endpoint == "" {
		return Result{Status: StatusError, Message: "Storage endpoint not configured"}
	}
	return Result{Status: StatusOK, Endpoint: c.Endpoint, Buckets: nonNil(c.Buckets)}
}

// Queue requires an endpoint once enabled.
func Queue(c config.QueueConfig) Result {
	if !c.Enabled {
		return Result{Status: StatusDisabled}
	}
	if c.Endpoint == "" {
		return Result{Status: StatusError, Message: "Queue endpoint not configured"}
	}
	return Result{Status: StatusOK, Endpoint: c.Endpoint, Queues: nonNil(c.Queues)}
}

// Cache requires an endpoint once enabled; the port defaults to 6379.
func Cache(c config.CacheConfig) Result {
	if !c.Enabled {
		return Result{Status: StatusDisabled}
	}
	if c.Endpoint == "" {
		return Result{Status: StatusError, Message: "Cache endpoint not configured"}
	}
	port := c.Port
	if port == "" {
		port = defaultCachePort
	}
	return Result{Status: StatusOK, Endpoint: c.Endpoint, Port: port}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// HealthReport is the body of the health probe.
type HealthReport struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Checks    Checks    `json:"checks"`
}

// Healthy reports whether every check is ok.
func (r HealthReport) Healthy() bool { return r.Status == HealthOK }

// Health is strict: a disabled dependency makes the service unhealthy.
func Health(cfg *config.Config, now time.Time) HealthReport {
	checks := Evaluate(cfg)
	status := HealthOK
	for _, r := range checks.all() {
		if r.Status != StatusOK {
			status = HealthError
			break
		}
	}
	return HealthReport{
		Status:    status,
		Timestamp: now.UTC(),
		Service:   cfg.App.Name,
		Version:   cfg.App.Version,
		Checks:    checks,
	}
}

// ReadinessReport is the body of the readiness probe.
type ReadinessReport struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Service      string    `json:"service"`
	Dependencies Checks    `json:"dependencies"`
}

// Ready reports whether every dependency is ok or disabled.
func (r ReadinessReport) Ready() bool { return r.Status == ReadyReady }

// Readiness tolerates disabled dependencies; only a misconfigured
// enabled dependency blocks traffic.
func Readiness(cfg *config.Config, now time.Time) ReadinessReport {
	deps := Evaluate(cfg)
	status := ReadyReady
	for _, r := range deps.all() {
		if r.Status != StatusOK && r.Status != StatusDisabled {
			status = ReadyNotReady
			break
		}
	}
	return ReadinessReport{
		Status:       status,
		Timestamp:    now.UTC(),
		Service:      cfg.App.Name,
		Dependencies: deps,
	}
}

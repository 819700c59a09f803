package status

import (
	"net/http"
	"time"

	"github.com/okian/comind/pkg/logger"
)

// Option applies a configuration option to the Checker.
type Option func(*Checker)

// WithHTTPClient sets the client used for upstream requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout sets the per-check timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithConcurrency caps the number of checks in flight. Zero or less
// runs every check at once.
func WithConcurrency(n int) Option {
	return func(c *Checker) {
		c.concurrency = n
	}
}

// WithLogger sets a logger for check outcomes.
func WithLogger(l logger.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

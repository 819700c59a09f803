package server

import (
	"net/http"
	"time"
)

// Option applies a configuration option to the underlying http.Server.
// Non-positive durations keep the defaults.
type Option func(*http.Server)

// WithReadTimeout sets the full request read timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.ReadTimeout = d
		}
	}
}

// WithWriteTimeout sets the response write timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.WriteTimeout = d
		}
	}
}

// WithIdleTimeout sets the keep-alive idle timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.IdleTimeout = d
		}
	}
}

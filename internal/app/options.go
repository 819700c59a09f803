package service

import (
	"time"

	"github.com/okian/comind/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChecker replaces the upstream status checker.
func WithChecker(c StatusChecker) Option {
	return func(s *Service) {
		if c != nil {
			s.checker = c
		}
	}
}

// WithStreamInterval sets the status stream push period.
func WithStreamInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock overrides the time source used for uptime.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Package service provides the dashboard service that implements the
// dependencies required by the HTTP adapter.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/comind/internal/domain/platform"
	"github.com/okian/comind/internal/domain/status"
	"github.com/okian/comind/pkg/logger"
)

// Default service configuration constants.
const (
	defaultStreamInterval = 30 * time.Second
	subscriberBuffer      = 1
)

// StatusChecker polls a set of upstream services.
type StatusChecker interface {
	Check(ctx context.Context, services platform.Services) status.Reports
}

// Service implements the dashboard API dependencies: the static platform
// description, on-demand status checks and a periodic status stream.
type Service struct {
	mu sync.RWMutex

	// Core components
	platform platform.Platform
	checker  StatusChecker

	// Configuration
	interval time.Duration
	now      func() time.Time

	// State
	startedAt   time.Time
	started     bool
	stopCh      chan struct{}
	cancel      context.CancelFunc
	done        chan struct{}
	subscribers map[chan status.Reports]struct{}

	// Logging
	logger logger.Logger
}

// New constructs a dashboard service for p.
func New(p platform.Platform, opts ...Option) *Service {
	s := &Service{
		platform:    p,
		interval:    defaultStreamInterval,
		now:         time.Now,
		subscribers: make(map[chan status.Reports]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.checker == nil {
		s.checker = status.NewChecker(status.WithLogger(s.logger))
	}
	s.startedAt = s.now()
	return s
}

// Start launches the stream broadcaster. It is a no-op when already started.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	bctx, cancel := context.WithCancel(ctx)
	s.stopCh = make(chan struct{})
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true

	go s.broadcast(bctx, s.done)

	s.logger.Info(ctx, "dashboard service started",
		logger.Int("services", len(s.platform.Services)),
		logger.String("streamInterval", s.interval.String()),
	)
	return nil
}

// Stop halts the broadcaster and closes every subscription.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.cancel()
	close(s.stopCh)
	done := s.done
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.mu.Unlock()

	<-done
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// Platform returns the static platform description.
func (s *Service) Platform() platform.Platform {
	return s.platform
}

// ServicesStatus checks every configured service now.
func (s *Service) ServicesStatus(ctx context.Context) status.Reports {
	return s.checker.Check(ctx, s.platform.Services)
}

// Uptime returns seconds since the service was constructed.
func (s *Service) Uptime() float64 {
	return s.now().Sub(s.startedAt).Seconds()
}

// Subscribe registers for periodic status pushes. The returned channel
// is closed once ctx is done or the service stops.
func (s *Service) Subscribe(ctx context.Context) (<-chan status.Reports, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	ch := make(chan status.Reports, subscriberBuffer)
	s.subscribers[ch] = struct{}{}
	stopCh := s.stopCh

	go func() {
		select {
		case <-ctx.Done():
			s.unsubscribe(ch)
		case <-stopCh:
		}
	}()
	return ch, nil
}

// Subscribers returns the number of open subscriptions.
func (s *Service) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

func (s *Service) unsubscribe(ch chan status.Reports) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Service) broadcast(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Subscribers() == 0 {
				continue
			}
			reports := s.ServicesStatus(ctx)
			if ctx.Err() != nil {
				return
			}
			s.publish(reports)
		}
	}
}

// publish hands reports to every subscriber. A subscriber still holding
// the previous push has it replaced.
func (s *Service) publish(reports status.Reports) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subscribers {
		select {
		case ch <- reports:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- reports:
		default:
		}
	}
	s.logger.Debug(context.Background(), "status pushed",
		logger.Int("subscribers", len(s.subscribers)),
		logger.Int("services", reports.Len()),
	)
}

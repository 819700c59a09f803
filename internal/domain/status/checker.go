package status

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/comind/internal/domain/platform"
	"github.com/okian/comind/pkg/logger"
)

// Default checker configuration constants.
const (
	defaultTimeout  = 5 * time.Second
	maxDrainedBytes = 64 << 10
)

// Checker fans out one GET per service descriptor and classifies the
// results. A Checker is safe for concurrent use.
type Checker struct {
	client      *http.Client
	timeout     time.Duration
	concurrency int
	logger      logger.Logger
	now         func() time.Time
}

// NewChecker creates a checker with configuration options.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:  &http.Client{},
		timeout: defaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check polls every service and returns one report per descriptor key,
// in descriptor order. Each check has its own timeout; a slow or failing
// service never affects the others. No services yields empty Reports.
func (c *Checker) Check(ctx context.Context, services platform.Services) Reports {
	results := make([]Report, len(services))

	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, svc := range services {
		i, svc := i, svc
		g.Go(func() error {
			results[i] = c.checkOne(ctx, svc)
			return nil
		})
	}
	_ = g.Wait()

	reports := newReports(len(services))
	for i, svc := range services {
		reports.set(svc.Key, results[i])
	}
	return reports
}

func (c *Checker) checkOne(ctx context.Context, svc platform.ServiceDescriptor) Report {
	const op = "status.check"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rep := Report{Name: svc.Name}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.URL, http.NoBody)
	if err != nil {
		return c.unhealthy(ctx, svc, rep, fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.unhealthy(ctx, svc, rep, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainedBytes))
	_ = resp.Body.Close()

	rep.StatusCode = resp.StatusCode
	rep.Status = Classify(resp.StatusCode)
	rep.ResponseTime = c.now().UnixMilli()

	if c.logger != nil {
		c.logger.Debug(ctx, "service checked",
			logger.String("service", svc.Key),
			logger.Int("status_code", resp.StatusCode),
			logger.String("status", string(rep.Status)),
		)
	}
	return rep
}

func (c *Checker) unhealthy(ctx context.Context, svc platform.ServiceDescriptor, rep Report, err error) Report {
	rep.Status = StateUnhealthy
	rep.Error = err.Error()
	rep.ResponseTime = c.now().UnixMilli()
	if c.logger != nil {
		c.logger.Warn(ctx, "service check failed",
			logger.String("service", svc.Key),
			logger.String("url", svc.URL),
			logger.Error(err),
		)
	}
	return rep
}

// Classify maps an HTTP status code onto a service state. Any answer
// below 400 is healthy; 4xx and 5xx are warnings.
func Classify(code int) State {
	if code < http.StatusBadRequest {
		return StateHealthy
	}
	return StateWarning
}

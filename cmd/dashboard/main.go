package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/okian/comind/internal/adapters/http/dashboard"
	"github.com/okian/comind/internal/adapters/http/server"
	app "github.com/okian/comind/internal/app"
	"github.com/okian/comind/internal/config"
	"github.com/okian/comind/internal/domain/platform"
	"github.com/okian/comind/internal/domain/status"
	"github.com/okian/comind/pkg/logger"
)

const serviceName = "monitoring-dashboard"

// statusWriteMargin is added to the worst-case poll when sizing the
// response write deadline.
const statusWriteMargin = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging
	if err := logger.Init(logger.WithService(serviceName, "")); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Get().Error(ctx, "failed to load config", logger.Error(err))
		return 1
	}

	// Re-create the logger with the loaded identity and environment.
	if err := logger.Init(
		logger.WithEnvironment(cfg.Environment),
		logger.WithService(serviceName, cfg.Platform.Version),
	); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	l := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		l.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, srv, err := build(cfg, l)
	if err != nil {
		l.Error(ctx, "failed to build server", logger.Error(err))
		return 1
	}
	if err := svc.Start(ctx); err != nil {
		l.Error(ctx, "failed to start service", logger.Error(err))
		return 1
	}
	defer svc.Stop()

	return serve(ctx, srv, l, cfg)
}

// build wires the dashboard service and its HTTP server from cfg.
func build(cfg *config.Config, l logger.Logger) (*app.Service, *server.Server, error) {
	checker := status.NewChecker(
		status.WithTimeout(cfg.Status.Timeout),
		status.WithConcurrency(cfg.Status.Concurrency),
		status.WithLogger(l.Named("status")),
	)
	svc := app.New(platform.FromConfig(cfg),
		app.WithLogger(l.Named("service")),
		app.WithChecker(checker),
		app.WithStreamInterval(cfg.Status.StreamInterval),
	)

	handler := dashboard.NewServer(svc, dashboard.WithLogger(l.Named("http"))).Handler()
	srv, err := server.New(net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), handler,
		server.WithReadTimeout(cfg.HTTP.ReadTimeout),
		server.WithWriteTimeout(writeTimeout(cfg)),
		server.WithIdleTimeout(cfg.HTTP.IdleTimeout),
	)
	if err != nil {
		return nil, nil, err
	}
	return svc, srv, nil
}

// writeTimeout leaves room for a full status poll, so hung upstreams are
// reported as unhealthy instead of the connection being dropped.
func writeTimeout(cfg *config.Config) time.Duration {
	poll := cfg.Status.MaxPollDuration(len(cfg.Platform.Services)) + statusWriteMargin
	return max(cfg.HTTP.WriteTimeout, poll)
}

// serve binds, serves until a termination signal, then closes immediately.
func serve(ctx context.Context, srv *server.Server, l logger.Logger, cfg *config.Config) int {
	if err := srv.Listen(); err != nil {
		l.Error(ctx, "failed to bind", logger.String("addr", srv.Addr()), logger.Error(err))
		return 1
	}

	served := make(chan error, 1)
	go func() { served <- srv.Serve() }()

	l.Info(ctx, "monitoring dashboard running",
		logger.String("addr", srv.Addr()),
		logger.String("environment", cfg.Environment),
		logger.Int("services", len(cfg.Platform.Services)),
	)

	select {
	case err := <-served:
		if err != nil {
			l.Error(ctx, "HTTP server failed", logger.Error(err))
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	l.Info(context.Background(), "termination signal received, shutting down")
	if err := srv.Close(); err != nil {
		l.Error(context.Background(), "server close failed", logger.Error(err))
	}
	<-served
	return 0
}

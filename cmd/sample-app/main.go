package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/okian/comind/internal/adapters/http/sampleapp"
	"github.com/okian/comind/internal/adapters/http/server"
	"github.com/okian/comind/internal/config"
	"github.com/okian/comind/pkg/logger"
	"github.com/okian/comind/pkg/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging
	if err := logger.Init(); err != nil {
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
		logger.WithService(cfg.App.Name, cfg.App.Version),
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

	srv, err := build(cfg, l, newMetrics(cfg))
	if err != nil {
		l.Error(ctx, "failed to build server", logger.Error(err))
		return 1
	}
	return serve(ctx, srv, l, cfg)
}

// build wires the sample HTTP server from cfg.
func build(cfg *config.Config, l logger.Logger, m *metrics.Manager) (*server.Server, error) {
	handler := sampleapp.NewServer(cfg, m, sampleapp.WithLogger(l.Named("http"))).Handler()
	return server.New(net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), handler,
		server.WithReadTimeout(cfg.HTTP.ReadTimeout),
		server.WithWriteTimeout(cfg.HTTP.WriteTimeout),
		server.WithIdleTimeout(cfg.HTTP.IdleTimeout),
	)
}

// newMetrics creates the request metrics manager described by cfg.
func newMetrics(cfg *config.Config) *metrics.Manager {
	return metrics.NewManager(
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithSubsystem(cfg.Metrics.Subsystem),
		metrics.WithHistogramBuckets(cfg.Metrics.Buckets),
		metrics.WithConstLabels(cfg.Metrics.ConstLabels),
		metrics.WithRuntimeCollectors(),
	)
}

// serve binds, serves until a termination signal, then closes immediately.
func serve(ctx context.Context, srv *server.Server, l logger.Logger, cfg *config.Config) int {
	if err := srv.Listen(); err != nil {
		l.Error(ctx, "failed to bind", logger.String("addr", srv.Addr()), logger.Error(err))
		return 1
	}

	served := make(chan error, 1)
	go func() { served <- srv.Serve() }()

	l.Info(ctx, "sample app listening",
		logger.String("addr", srv.Addr()),
		logger.Int("port", cfg.Port),
		logger.String("environment", cfg.Environment),
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

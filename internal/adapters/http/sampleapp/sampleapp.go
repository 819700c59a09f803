// Package sampleapp wires the HTTP routes of the sample service: info and
// config echo routes, dependency probes and the metrics exposition.
package sampleapp

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/comind/internal/adapters/http/middleware"
	"github.com/okian/comind/internal/adapters/http/respond"
	"github.com/okian/comind/internal/config"
	"github.com/okian/comind/internal/domain/probe"
	"github.com/okian/comind/pkg/logger"
	"github.com/okian/comind/pkg/metrics"
)

const welcomeMessage = "Welcome to Comind-Ops Sample Application!"

// Server wires HTTP routes for the sample service. The configuration is
// read-only once the server is built.
type Server struct {
	cfg       *config.Config
	metrics   *metrics.Manager
	logger    logger.Logger
	now       func() time.Time
	startedAt time.Time
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used for access and error logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for timestamps and uptime.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates a sample server for cfg recording into m.
func NewServer(cfg *config.Config, m *metrics.Manager, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewManager()
	}
	s.startedAt = s.now()
	return s
}

type welcomeResponse struct {
	Message     string    `json:"message"`
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	Platform    string    `json:"platform"`
	Environment string    `json:"environment"`
}

type features struct {
	Database bool `json:"database"`
	Storage  bool `json:"storage"`
	Queue    bool `json:"queue"`
	Cache    bool `json:"cache"`
}

type infoResponse struct {
	App struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		Description string `json:"description"`
	} `json:"app"`
	Platform struct {
		Name     string   `json:"name"`
		Features features `json:"features"`
	} `json:"platform"`
	Runtime struct {
		Go       string            `json:"go"`
		Platform string            `json:"platform"`
		Arch     string            `json:"arch"`
		Memory   probe.MemoryUsage `json:"memory"`
		Uptime   float64           `json:"uptime"`
	} `json:"runtime"`
}

type configResponse struct {
	Database config.DatabaseConfig `json:"database"`
	Storage  config.StorageConfig  `json:"storage"`
	Queue    config.QueueConfig    `json:"queue"`
	Cache    config.CacheConfig    `json:"cache"`
}

var (
	notFoundBody      = respond.ErrorBody{Error: "Not Found"}
	internalErrorBody = respond.ErrorBody{Error: "Internal Server Error"}
)

// Handler builds the complete sample router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	chain := []mux.MiddlewareFunc{
		middleware.Metrics(s.metrics),
		middleware.RequestLogger(s.logger),
		middleware.Recover(s.logger, internalErrorBody),
	}
	r.Use(chain...)

	s.Register(r)

	// Unmatched routes bypass router middleware, so wrap them explicitly.
	notFound := http.Handler(http.HandlerFunc(s.handleNotFound))
	for i := len(chain) - 1; i >= 0; i-- {
		notFound = chain[i](notFound)
	}
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound
	return r
}

// Register attaches all sample routes to r.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/", s.handleWelcome).Methods(http.MethodGet)
	r.HandleFunc("/api/info", s.handleInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/config", s.handleConfig).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/live", s.handleLive).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
}

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, welcomeResponse{
		Message:     welcomeMessage,
		Version:     s.cfg.App.Version,
		Timestamp:   s.now().UTC(),
		Platform:    s.cfg.App.Platform,
		Environment: s.cfg.Environment,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	var resp infoResponse
	resp.App.Name = s.cfg.App.Name
	resp.App.Version = s.cfg.App.Version
	resp.App.Description = s.cfg.App.Description
	resp.Platform.Name = s.cfg.App.Platform
	resp.Platform.Features = features{
		Database: s.cfg.Database.Enabled,
		Storage:  s.cfg.Storage.Enabled,
		Queue:    s.cfg.Queue.Enabled,
		Cache:    s.cfg.Cache.Enabled,
	}
	resp.Runtime.Go = runtime.Version()
	resp.Runtime.Platform = runtime.GOOS
	resp.Runtime.Arch = runtime.GOARCH
	resp.Runtime.Memory = probe.ReadMemory()
	resp.Runtime.Uptime = probe.Uptime(s.startedAt, s.now())
	respond.JSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	resp := configResponse{
		Database: s.cfg.Database,
		Storage:  s.cfg.Storage,
		Queue:    s.cfg.Queue,
		Cache:    s.cfg.Cache,
	}
	if resp.Storage.Buckets == nil {
		resp.Storage.Buckets = []string{}
	}
	if resp.Queue.Queues == nil {
		resp.Queue.Queues = []string{}
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := probe.Health(s.cfg, s.now())
	code := http.StatusOK
	if !report.Healthy() {
		code = http.StatusServiceUnavailable
		s.logger.Warn(r.Context(), "health check failed", logger.Any("checks", report.Checks))
	}
	respond.JSON(w, code, report)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	report := probe.Readiness(s.cfg, s.now())
	code := http.StatusOK
	if !report.Ready() {
		code = http.StatusServiceUnavailable
		s.logger.Warn(r.Context(), "readiness check failed", logger.Any("dependencies", report.Dependencies))
	}
	respond.JSON(w, code, report)
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, probe.Liveness(s.cfg.App.Name, s.startedAt, s.now()))
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusNotFound, notFoundBody)
}

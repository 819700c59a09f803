// Package dashboard wires the HTTP routes of the platform status dashboard.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/comind/internal/adapters/http/middleware"
	"github.com/okian/comind/internal/adapters/http/respond"
	"github.com/okian/comind/internal/adapters/http/site"
	"github.com/okian/comind/internal/domain/platform"
	"github.com/okian/comind/internal/domain/status"
	"github.com/okian/comind/pkg/logger"
)

// Dependencies required by the dashboard handlers.
type Dependencies interface {
	Platform() platform.Platform
	ServicesStatus(ctx context.Context) status.Reports
	Subscribe(ctx context.Context) (<-chan status.Reports, error)
	Uptime() float64
}

// AvailableEndpoints is advertised by the not-found response.
var AvailableEndpoints = []string{
	"GET /",
	"GET /health",
	"GET /api/services/status",
	"GET /api/services/stream",
	"GET /api/platform/info",
}

// Server wires HTTP routes for the dashboard.
type Server struct {
	deps   Dependencies
	logger logger.Logger
	now    func() time.Time
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

// WithClock overrides the time source used for response timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates a dashboard server backed by deps.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps: deps,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
	Platform  string    `json:"platform"`
	Version   string    `json:"version"`
}

type platformInfoResponse struct {
	platform.Platform
	Uptime       float64   `json:"uptime"`
	Timestamp    time.Time `json:"timestamp"`
	GoVersion    string    `json:"goVersion"`
	Architecture string    `json:"architecture"`
	OS           string    `json:"platform"`
}

type notFoundResponse struct {
	Error              string   `json:"error"`
	Message            string   `json:"message"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}

var internalErrorBody = respond.ErrorBody{
	Error:   "Internal Server Error",
	Message: "Something went wrong on our end",
}

// Handler builds the complete dashboard router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	chain := []mux.MiddlewareFunc{
		middleware.RequestLogger(s.logger),
		middleware.Recover(s.logger, internalErrorBody),
		middleware.SecurityHeaders(middleware.DashboardCSP),
		middleware.CORS(),
	}
	r.Use(chain...)

	if err := s.Register(r); err != nil {
		s.logger.Error(context.Background(), "failed to register dashboard routes", logger.Error(err))
	}

	// Unmatched routes bypass router middleware, so wrap them explicitly.
	notFound := http.Handler(http.HandlerFunc(s.handleNotFound))
	for i := len(chain) - 1; i >= 0; i-- {
		notFound = chain[i](notFound)
	}
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound
	return r
}

// Register attaches all dashboard routes to r.
func (s *Server) Register(r *mux.Router) error {
	if err := site.Register(r); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/services/status", s.handleServicesStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/services/stream", s.handleServicesStream).Methods(http.MethodGet)
	r.HandleFunc("/api/platform/info", s.handlePlatformInfo).Methods(http.MethodGet)
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	p := s.deps.Platform()
	respond.JSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC(),
		Uptime:    s.deps.Uptime(),
		Platform:  p.Name,
		Version:   p.Version,
	})
}

func (s *Server) handleServicesStatus(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, s.deps.ServicesStatus(r.Context()))
}

func (s *Server) handlePlatformInfo(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, platformInfoResponse{
		Platform:     s.deps.Platform(),
		Uptime:       s.deps.Uptime(),
		Timestamp:    s.now().UTC(),
		GoVersion:    runtime.Version(),
		Architecture: runtime.GOARCH,
		OS:           runtime.GOOS,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusNotFound, notFoundResponse{
		Error:              "Not Found",
		Message:            "The requested endpoint does not exist",
		AvailableEndpoints: AvailableEndpoints,
	})
}

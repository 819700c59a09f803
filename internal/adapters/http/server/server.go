// Package server wraps http.Server with address validation and an
// explicit bind step, so that bind failures surface before serving.
package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Default server timeouts.
const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
)

// Port 0 is accepted and binds an ephemeral port.
const maxPort = 65535

// Server wraps http.Server with validation and an explicit listener.
type Server struct {
	server   *http.Server
	listener net.Listener
}

// New creates a new HTTP server with the given address and handler.
// The address is validated before creating the server.
func New(addr string, handler http.Handler, opts ...Option) (*Server, error) {
	if err := validateHostPort(addr); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddr, addr, err)
	}

	srv := &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
		},
	}
	for _, opt := range opts {
		opt(srv.server)
	}
	return srv, nil
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListen, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Serve accepts connections until Close. A closed server returns nil.
func (s *Server) Serve() error {
	if s.listener == nil {
		return ErrNotListening
	}
	err := s.server.Serve(s.listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%w: %w", ErrServe, err)
	}
	return nil
}

// Close stops the server immediately without draining in-flight requests.
func (s *Server) Close() error {
	return s.server.Close()
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if err := validation.Validate(port, validation.Required, is.Digit); err != nil {
		return validation.NewError("validation_invalid_port", "must be a valid port")
	}
	if n, err := strconv.Atoi(port); err != nil || n > maxPort {
		return validation.NewError("validation_invalid_port", "must be a valid port")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}
	return nil
}

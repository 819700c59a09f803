package dashboard

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/comind/internal/adapters/http/respond"
	"github.com/okian/comind/internal/domain/status"
	"github.com/okian/comind/pkg/logger"
)

const (
	streamWriteTimeout = 5 * time.Second
	streamPongWait     = 60 * time.Second
	streamPingPeriod   = streamPongWait * 9 / 10
)

var streamUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

// handleServicesStream pushes the services status mapping right away and
// then every time the dashboard service broadcasts.
func (s *Server) handleServicesStream(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, err := s.deps.Subscribe(ctx)
	if err != nil {
		s.logger.Warn(ctx, "status stream unavailable", logger.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "Status stream is not available")
		return
	}

	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the handshake error.
		return
	}
	defer conn.Close()

	s.serveStream(ctx, conn, updates)
}

func (s *Server) serveStream(ctx context.Context, conn *websocket.Conn, updates <-chan status.Reports) {
	if err := writeStreamPayload(conn, s.deps.ServicesStatus(ctx)); err != nil {
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case reports, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(streamWriteTimeout))
				return
			}
			if err := writeStreamPayload(conn, reports); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeStreamPayload(conn *websocket.Conn, reports status.Reports) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(reports)
}

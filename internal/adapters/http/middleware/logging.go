package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/okian/comind/pkg/logger"
)

// HeaderRequestID carries the request id in and out.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the request id stored on ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestLogger assigns a request id (echoing a caller-supplied one) and
// logs every completed request.
func RequestLogger(l logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			r = r.WithContext(ctx)

			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r)

			l.Info(ctx, "request",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.String("ip", clientIP(r)),
				logger.String("userAgent", r.UserAgent()),
				logger.Int("status", wrapped.statusCode),
				logger.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				logger.String("request_id", id),
			)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

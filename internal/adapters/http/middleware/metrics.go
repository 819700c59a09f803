// Package middleware provides the HTTP middleware shared by both services.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/comind/pkg/metrics"
)

// Metrics records request duration and count for every request under
// (method, route, status code). The route is the matched path template,
// or the raw path when nothing matched.
func Metrics(m *metrics.Manager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			m.RecordHTTPRequest(r.Method, Route(r), strconv.Itoa(wrapped.statusCode), time.Since(start).Seconds())
		})
	}
}

// Route resolves the route label for r.
func Route(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

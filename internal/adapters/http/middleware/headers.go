package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

// DashboardCSP allows the inline dashboard assets, the cdnjs stylesheet
// host and the status websocket.
const DashboardCSP = "default-src 'self'; " +
	"style-src 'self' 'unsafe-inline' https://cdnjs.cloudflare.com; " +
	"script-src 'self' 'unsafe-inline' https://cdnjs.cloudflare.com; " +
	"img-src 'self' data: https:; " +
	"connect-src 'self' http://localhost:* https://* ws: wss:"

// SecurityHeaders sets a content security policy plus the usual
// hardening headers.
func SecurityHeaders(csp string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows any origin and answers preflight requests with 204.
func CORS() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, "+HeaderRequestID)
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

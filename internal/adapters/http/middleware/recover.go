package middleware

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/comind/internal/adapters/http/respond"
	"github.com/okian/comind/pkg/logger"
)

// Recover converts handler panics into a 500 JSON response carrying body.
// Nothing about the panic reaches the client.
func Recover(l logger.Logger, body any) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrap(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				l.Error(r.Context(), "unhandled error",
					logger.Error(fmt.Errorf("%w: %v", ErrPanic, rec)),
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.String("request_id", RequestID(r.Context())),
				)
				if !wrapped.wroteHeader {
					respond.JSON(wrapped, http.StatusInternalServerError, body)
				}
			}()
			next.ServeHTTP(wrapped, r)
		})
	}
}

// Package site serves the embedded dashboard UI.
package site

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// Error constants
var (
	ErrNilRouter = errors.New("site router is nil")
)

const indexFile = "index.html"

// Register attaches the dashboard page to r at GET /.
func Register(r *mux.Router) error {
	if r == nil {
		return ErrNilRouter
	}
	r.Handle("/", NewRootHandler()).Methods(http.MethodGet, http.MethodHead)
	return nil
}

// RootHandler serves the dashboard index page.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// ServeHTTP serves index.html for the root path only.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}

// Index returns the raw dashboard page.
func Index() ([]byte, error) {
	return staticFS.ReadFile("static/" + indexFile)
}

// Package respond holds the JSON response helpers shared by the HTTP adapters.
package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the generic JSON error shape.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes an ErrorBody whose error text is the status text.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: http.StatusText(status), Message: message})
}

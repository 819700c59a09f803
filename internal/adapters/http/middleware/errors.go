package middleware

import "errors"

// Sentinel kinds for middleware errors.
var (
	ErrPanic             = errors.New("handler panicked")
	ErrHijackUnsupported = errors.New("response writer does not support hijacking")
)

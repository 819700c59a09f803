package server

import "errors"

// Sentinel kinds for server errors.
var (
	ErrInvalidAddr  = errors.New("invalid listen address")
	ErrListen       = errors.New("listen failed")
	ErrNotListening = errors.New("server is not listening")
	ErrServe        = errors.New("serve failed")
)

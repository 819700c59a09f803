package service

import "errors"

// Sentinel error kinds for the dashboard service.
var (
	ErrNotStarted = errors.New("service not started")
)

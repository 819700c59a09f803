package status

import "errors"

// Sentinel kinds for status errors.
var (
	ErrBadRequest = errors.New("cannot build upstream request")
)

package logger

import "errors"

// ErrUnknownLevel is returned for level names outside debug, info, warn and error.
var ErrUnknownLevel = errors.New("unknown log level")

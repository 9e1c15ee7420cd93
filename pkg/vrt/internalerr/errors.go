package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrMissingConfig    = errors.New("missing required configuration")

	// Structural nesting errors, only reported by strict trackers
	ErrUnbalanced      = errors.New("close marker without matching open marker")
	ErrMismatchedClose = errors.New("close marker does not match innermost open marker")
)

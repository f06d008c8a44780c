package filter

import "errors"

// Sentinel kinds for filter errors.
var (
	ErrInvalidRange = errors.New("invalid year range")
)

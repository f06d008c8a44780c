package export

import "errors"

// Sentinel error kinds for exports.
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrWrite             = errors.New("export write failed")
)

package service

import "errors"

// Sentinel error kinds for the service.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoLoader   = errors.New("no store and no loader configured")
	ErrNoLayout   = errors.New("no circuit layout loaded")
)

package service

import "errors"

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Sentinel kinds for service wiring errors.
var (
	ErrNoStore    = errors.New("no store configured")
	ErrNoEmbedder = errors.New("no embedding provider configured")
	ErrNotStarted = errors.New("service not started")
)

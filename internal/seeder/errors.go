package seeder

import "errors"

// Sentinel kinds for seeding errors.
var (
	ErrServiceDegraded = errors.New("service not healthy")
	ErrOutOfRange      = errors.New("score out of range")
	ErrProbeFailed     = errors.New("duplicate probe not scored")
	ErrNotMonotone     = errors.New("duplicate scored as more novel")
	ErrStatsMismatch   = errors.New("stats inconsistent with run")
)

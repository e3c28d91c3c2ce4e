package embedding

import "errors"

// Sentinel kinds for embedding errors.
var (
	ErrMissingAPIKey = errors.New("missing api key")
	ErrEmptyInput    = errors.New("empty input text")
	ErrRateLimited   = errors.New("provider rate limited")
	ErrProvider      = errors.New("embedding provider failed")
)

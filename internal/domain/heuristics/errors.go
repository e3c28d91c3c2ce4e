package heuristics

import "errors"

// ErrInvalidInput marks prompt text the scorer cannot analyze. This is the
// only failure mode; it is surfaced immediately and never defaulted.
var ErrInvalidInput = errors.New("invalid prompt text")

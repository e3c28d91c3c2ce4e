package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrEmptyPrompt   = errors.New("prompt must not be empty")
	ErrPromptTooLong = errors.New("prompt exceeds maximum length")
	ErrBadRequest    = errors.New("bad request")
	ErrRateLimited   = errors.New("rate limit exceeded")
)

func wrapKind(op string, kind error, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}

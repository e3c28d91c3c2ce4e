package client

import "errors"

// Sentinel kinds for client errors.
var ErrUnexpectedStatus = errors.New("unexpected status")

package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidLimit  = errors.New("invalid neighbor limit")
	ErrDimMismatch   = errors.New("embedding dimension mismatch")
	ErrEmptyVector   = errors.New("empty embedding vector")
	ErrStoreClosed   = errors.New("store closed")
	ErrStoreInternal = errors.New("store operation failed")
)

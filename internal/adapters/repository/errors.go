package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidParam = errors.New("invalid query parameter")
	ErrEmptyPatch   = errors.New("no updatable fields in patch")
	ErrMissingID    = errors.New("missing record id")
)

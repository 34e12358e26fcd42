package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotConfigured = errors.New("feature not configured")
)

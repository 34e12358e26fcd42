package payments

import "errors"

// Sentinel kinds for payments errors.
var (
	ErrNotConfigured = errors.New("payments provider not configured")
	ErrProvider      = errors.New("payments provider request failed")
)

package knowledge

import "errors"

// Sentinel kinds for knowledge lookups.
var (
	ErrEmptyQuery   = errors.New("query is required")
	ErrNoEmbedding  = errors.New("embedding provider returned no vector")
	ErrEmptyAnswer  = errors.New("language model returned no text")
	ErrNotAvailable = errors.New("provider not configured")
)

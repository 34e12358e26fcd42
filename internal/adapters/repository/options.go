package repository

// Option applies a configuration option to a Collection.
type Option func(*options)

type options struct {
	defaultLimit int
	maxLimit     int
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// WithLimits sets the default and maximum page size for List.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(o *options) {
		if defaultLimit > 0 {
			o.defaultLimit = defaultLimit
		}
		if maxLimit >= o.defaultLimit {
			o.maxLimit = maxLimit
		}
	}
}

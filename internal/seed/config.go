// Package seed generates synthetic partners, posts them to a running
// dashboard and checks the funnel it reports.
package seed

import (
	"errors"
	"time"
)

// Error constants.
var (
	ErrUnhealthy = errors.New("dashboard is not healthy")
	ErrSubmit    = errors.New("partner submission failed")
	ErrMismatch  = errors.New("pipeline does not match the seeded partners")
)

// Config holds the seed run parameters.
type Config struct {
	BaseURL  string        // dashboard root, e.g. http://localhost:3000
	User     string        // Basic-Auth user; empty sends no credentials
	Password string        // Basic-Auth password
	Count    int           // number of partners to create
	Workers  int           // concurrent submitters
	Timeout  time.Duration // per-request timeout
	Prefix   string        // name prefix marking this run's partners
	Seed     uint64        // generator seed; 0 picks one from the clock
	Verbose  bool
}

// Stats holds run counters.
type Stats struct {
	Generated int
	Submitted int
	Created   int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

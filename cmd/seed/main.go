package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/mission-control/internal/seed"
	"github.com/okian/mission-control/pkg/logger"
)

// Default configuration constants.
const (
	defaultCount       = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunDeadline = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:3000", "Base URL of the dashboard")
		count   = flag.Int("count", defaultCount, "Number of partners to create")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		prefix  = flag.String("prefix", "", "Name prefix for seeded partners (default: seed-UNIXTIME-)")
		seedVal = flag.Uint64("seed", 0, "Generator seed (default: from the clock)")
		verbose = flag.Bool("verbose", false, "Log every rejected partner")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if *prefix == "" {
		*prefix = "seed-" + strconv.FormatInt(time.Now().Unix(), 10) + "-"
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunDeadline)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:  *baseURL,
		User:     os.Getenv("MC_AUTH_USER"),
		Password: os.Getenv("MC_AUTH_PASSWORD"),
		Count:    *count,
		Workers:  *workers,
		Timeout:  *timeout,
		Prefix:   *prefix,
		Seed:     *seedVal,
		Verbose:  *verbose,
	}
	if _, err := seed.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "seed run failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/mission-control/internal/adapters/payments"
	"github.com/okian/mission-control/internal/adapters/postgrest"
	service "github.com/okian/mission-control/internal/app"
	"github.com/okian/mission-control/internal/config"
	"github.com/okian/mission-control/pkg/logger"
)

const runTimeout = 2 * time.Minute

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	l := logger.Get().Named("snapshot")

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := run(ctx, l); err != nil {
		l.Error(ctx, "snapshot failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, l logger.Logger) error {
	cfg, err := config.Read(ctx)
	if err != nil {
		return err
	}
	if cfg.StoreURL == "" {
		return fmt.Errorf("%w: store_url is required", config.ErrInvalidConfig)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		l.Warn(ctx, "invalid log_level; keeping info", logger.String("log_level", cfg.LogLevel))
	}

	provider, err := payments.NewStripe(cfg.StripeKey, payments.WithStripeLogger(l))
	if err != nil {
		return err
	}
	store := postgrest.New(cfg.StoreURL, cfg.StoreKey, postgrest.WithLogger(l))
	svc := service.New(store,
		service.WithLogger(l),
		service.WithRevenue(payments.New(provider)),
	)

	snap, err := svc.SaveSnapshot(ctx)
	if err != nil {
		return err
	}
	l.Info(ctx, "snapshot stored",
		logger.String("date", snap.SnapshotDate),
		logger.Int("active_subscriptions", snap.ActiveSubscriptions),
		logger.Int("customers", snap.Customers))
	return nil
}

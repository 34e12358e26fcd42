package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/okian/mission-control/internal/config"
	"github.com/okian/mission-control/migrations"
	"github.com/okian/mission-control/pkg/logger"
)

func main() {
	flag.Usage = func() {
		os.Stderr.WriteString("usage: migrate [up|down|version]\n\nThe database URL is read from MC_DATABASE_URL.\n")
	}
	flag.Parse()

	arg := "up"
	if flag.NArg() > 0 {
		arg = flag.Arg(0)
	}
	cmd, err := migrations.ParseCommand(arg)
	if err != nil {
		flag.Usage()
		os.Exit(2)
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	l := logger.Get().Named("migrate")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, l); err != nil {
		l.Error(ctx, "migration failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd migrations.Command, l logger.Logger) error {
	cfg, err := config.Read(ctx)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("%w: database_url is required", config.ErrInvalidConfig)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	return migrations.Run(ctx, db, cmd, l)
}

package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/okian/mission-control/pkg/logger"
)

// Command is a migration direction understood by Run.
type Command string

// Supported commands.
const (
	Up      Command = "up"
	Down    Command = "down"
	Version Command = "version"
)

// Error constants.
var (
	ErrUnknownCommand = errors.New("unknown migration command")
	ErrDirty          = errors.New("database schema is dirty")
)

// ParseCommand validates a command-line argument.
func ParseCommand(s string) (Command, error) {
	switch c := Command(s); c {
	case Up, Down, Version:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q (want up, down or version)", ErrUnknownCommand, s)
}

// Run applies cmd to db using the embedded migrations. It is idempotent:
// an up or down with nothing to do is not an error.
func Run(ctx context.Context, db *sql.DB, cmd Command, l logger.Logger) error {
	if l == nil {
		l = logger.NewNop()
	}
	src, err := iofs.New(FS, ".")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			l.Warn(ctx, "failed to close migration source", logger.Error(srcErr))
		}
		if dbErr != nil {
			l.Warn(ctx, "failed to close migration database", logger.Error(dbErr))
		}
	}()

	switch cmd {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	case Version:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		l.Info(ctx, "no migrations to apply", logger.String("command", string(cmd)))
		err = nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", cmd, err)
	}

	v, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		l.Info(ctx, "schema has no migrations applied")
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case dirty:
		return fmt.Errorf("%w at version %d", ErrDirty, v)
	}
	l.Info(ctx, "schema version", logger.Any("version", v), logger.String("command", string(cmd)))
	return nil
}

// Command migrate applies the embedded schema migrations for the users,
// queries and prompts tables.
//
// The connection comes from -dsn, or else from the service configuration
// (config.toml, its CADUCEUS_ENV overlay and CADUCEUS_DB_* variables).
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/caduceus/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

type options struct {
	dsn     string
	up      bool
	down    bool
	steps   int
	version bool
	force   int
	forced  bool
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	opts := parseFlags()
	if err := run(opts, logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.dsn, "dsn", "", "Database URL (defaults to the service configuration)")
	flag.BoolVar(&o.up, "up", false, "Apply all pending migrations")
	flag.BoolVar(&o.down, "down", false, "Revert all migrations")
	flag.IntVar(&o.steps, "steps", 0, "Apply N migrations (negative reverts)")
	flag.BoolVar(&o.version, "version", false, "Print the current schema version")
	flag.IntVar(&o.force, "force", -1, "Force the schema version without running migrations")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			o.forced = true
		}
	})
	return o
}

func run(o options, logger *slog.Logger) error {
	dsn, err := resolveDSN(o.dsn)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch {
	case o.version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		logger.Info("schema version", "version", v, "dirty", dirty)
		return nil
	case o.forced:
		if err := m.Force(o.force); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		logger.Warn("schema version forced", "version", o.force)
		return nil
	case o.up:
		return report(logger, "up", m.Up())
	case o.down:
		return report(logger, "down", m.Down())
	case o.steps != 0:
		return report(logger, fmt.Sprintf("steps %d", o.steps), m.Steps(o.steps))
	default:
		fmt.Fprintln(os.Stderr, "usage: migrate [-dsn URL] -up | -down | -steps N | -version | -force N")
		flag.PrintDefaults()
		return nil
	}
}

func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if !cfg.Configured() {
		return "", errors.New("no database configured: set -dsn, CADUCEUS_DB_URL or CADUCEUS_DB_NAME")
	}
	return cfg.ConnString(), nil
}

func report(logger *slog.Logger, op string, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already current", "op", op)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	logger.Info("migrations applied", "op", op)
	return nil
}

package database

import (
	"database/sql"
	"errors"
	"fmt"

	"go-coin-wallet/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// DefaultMigrationsSource is relative to the repository root.
const DefaultMigrationsSource = "file://pkg/database/migrations"

// RunMigrations applies every pending up migration.
func RunMigrations(cfg *config.DatabaseConfig, source string, log *logrus.Logger) error {
	return withMigrator(cfg, source, func(m *migrate.Migrate) error {
		log.Info("Running database migrations...")
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No new migrations to apply.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations applied successfully!")
		return nil
	})
}

// RollbackMigrations reverts the last steps migrations.
func RollbackMigrations(cfg *config.DatabaseConfig, source string, steps int, log *logrus.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}
	return withMigrator(cfg, source, func(m *migrate.Migrate) error {
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		log.WithField("steps", steps).Info("Database migrations rolled back")
		return nil
	})
}

func withMigrator(cfg *config.DatabaseConfig, source string, fn func(m *migrate.Migrate) error) error {
	if source == "" {
		source = DefaultMigrationsSource
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database for migrations: %w", err)
	}
	defer db.Close()

	if err = db.Ping(); err != nil {
		return fmt.Errorf("could not ping database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return fn(m)
}

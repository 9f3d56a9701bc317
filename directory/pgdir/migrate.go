package pgdir

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrate applies the embedded schema migrations to the database at dsn.
// It opens its own database/sql handle through the pgx stdlib driver.
func Migrate(dsn string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open pgx stdlib: %w", err)
	}
	defer sqldb.Close()

	driver, err := postgres.WithInstance(sqldb, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres migrate driver: %w", err)
	}

	src, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("pgdir: schema up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("pgdir: migrations applied")
	return nil
}

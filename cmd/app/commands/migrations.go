package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies every pending migration found under migrationsDir for driver
// ("postgres" reads migrationsDir/postgresql, "mysql" reads migrationsDir/mysql).
// Having nothing to apply is not an error.
func RunMigrations(logger *slog.Logger, migrationsDir, driver, connectionString string) error {
	var dbType string
	switch driver {
	case "postgres":
		dbType = "postgresql"
	case "mysql":
		dbType = "mysql"
	default:
		return fmt.Errorf("failed to create migrate instance: unsupported driver %q", driver)
	}

	logger.Info("running database migrations",
		slog.String("driver", driver),
		slog.String("path", migrationsDir),
	)

	m, err := migrate.New("file://"+filepath.Join(migrationsDir, dbType), migrateURL(driver, connectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrateURL turns a database/sql connection string into a migrate database URL.
// The MySQL driver DSN has no scheme of its own.
func migrateURL(driver, connectionString string) string {
	if driver == "mysql" {
		return "mysql://" + connectionString
	}
	return connectionString
}

package repositories

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"weather-archive/pkg/logger"
)

//go:embed migrations
var migrationFiles embed.FS

// MigratePostgres applies pending migrations to the database at dbURL.
func MigratePostgres(dbURL string, l *logger.Logger) error {
	source, err := iofs.New(migrationFiles, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, pgx5URL(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	return up(m, l)
}

// MigrateSQLite applies pending migrations to db. The migrate instance is not
// closed because that would close db.
func MigrateSQLite(db *sql.DB, l *logger.Logger) error {
	source, err := iofs.New(migrationFiles, "migrations/sqlite3")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return up(m, l)
}

func up(m *migrate.Migrate, l *logger.Logger) error {
	if version, dirty, err := m.Version(); err == nil && dirty {
		clean := int(version) - 1
		if clean < 1 {
			clean = database.NilVersion
		}
		l.Warning("dirty migration state detected, forcing previous version", map[string]any{
			"dirtyVersion": version,
			"resettingTo":  clean,
		})
		if err := m.Force(clean); err != nil {
			return fmt.Errorf("failed to reset dirty migration: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			l.Info("database is up to date, no migrations to apply")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		l.Info("migrations applied successfully")
		return nil
	}
	l.Info("migrations applied successfully", map[string]any{"version": version})
	return nil
}

// pgx5URL converts a postgres:// URL to the pgx5:// scheme expected by the
// migrate pgx/v5 driver.
func pgx5URL(dbURL string) string {
	for _, prefix := range []string{"postgresql:", "postgres:"} {
		if strings.HasPrefix(dbURL, prefix) {
			return "pgx5:" + strings.TrimPrefix(dbURL, prefix)
		}
	}
	return dbURL
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"weather-archive/config"
	"weather-archive/pkg/logger"
)

// InitWeatherRepository opens the configured store, applies migrations and
// returns the repository with a function that releases its connections.
func InitWeatherRepository(ctx context.Context, cfg config.DatabaseConfig, loc *time.Location, l *logger.Logger) (WeatherRepository, func(), error) {
	switch cfg.Driver {
	case "postgres":
		if err := MigratePostgres(cfg.URL, l); err != nil {
			return nil, nil, err
		}
		pool, err := OpenPostgres(ctx, cfg.URL, int32(cfg.MaxConns))
		if err != nil {
			return nil, nil, err
		}
		l.Info("connected to postgres", map[string]any{"maxConns": cfg.MaxConns})
		return NewPostgresRepository(pool, loc), pool.Close, nil

	case "sqlite3":
		db, err := OpenSQLite(cfg.SQLitePath, cfg.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		if err := MigrateSQLite(db, l); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		l.Info("opened sqlite database", map[string]any{"path": cfg.SQLitePath})
		return NewSQLiteRepository(db, loc), func() { _ = db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"weather-archive/config"
	"weather-archive/internal/archive"
	v1 "weather-archive/internal/controllers/http/v1"
	"weather-archive/internal/repositories"
	"weather-archive/internal/services/weather"
	"weather-archive/pkg/httpserver"
	"weather-archive/pkg/logger"
	"weather-archive/pkg/observe"
)

// @title Weather Archive API
// @version 1.0.0
// @description Stores meteorological observations uploaded as Excel workbooks and serves them by month.

// @contact.name Weather Archive Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Weather
// @tag.description Weather archive ingestion and queries
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cnf, err := config.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	loc, err := cnf.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logOpts := logger.Options{
		AppName:  cnf.App.Name,
		AppEnv:   cnf.App.Env,
		Level:    cnf.Log.Level,
		Location: loc,
	}
	writers := []io.Writer{os.Stdout}
	var sentryHook *observe.SentryHook
	if cnf.Sentry.DSN != "" {
		sentryHook, err = observe.NewSentryHook(cnf.App.Env, cnf.App.Name, cnf.Sentry.DSN, cnf.Sentry.Debug, loc)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			writers = append(writers, sentryHook)
			sentryHook.SetLogger(logger.New(logOpts, os.Stdout))
		}
	}
	l := logger.New(logOpts, writers...)

	repo, closeRepo, err := repositories.InitWeatherRepository(ctx, cnf.Database, loc, l)
	if err != nil {
		l.Fatal("cannot open storage", map[string]any{"err": err.Error(), "driver": cnf.Database.Driver})
	}

	archiver, err := archive.InitArchiver(ctx, cnf.Archive)
	if err != nil {
		l.Fatal("cannot init upload archive", map[string]any{"err": err.Error()})
	}

	service := weather.NewWeatherService(repo, loc, l,
		weather.WithArchiver(archiver),
		weather.WithMetrics(observe.NewMetrics(prometheus.DefaultRegisterer)),
	)

	read, write, idle := cnf.Server.Timeouts()
	app := httpserver.InitFiberServer(httpserver.Options{
		AppName:      cnf.App.Name,
		BodyLimit:    cnf.Server.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  idle,
		Ready:        service.Ping,
	})

	v1.NewRouter(
		app,
		service,
		prometheus.DefaultGatherer,
		l,
	)

	go func() {
		if err := app.Listen(":" + cnf.Server.Port); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err})
		}
	}()

	l.Info("application started successfully", map[string]any{
		"port":     cnf.Server.Port,
		"driver":   cnf.Database.Driver,
		"timeZone": loc.String(),
		"archive":  cnf.Archive.Enabled,
	})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = app.ShutdownWithContext(shutdownCtx)
		closeRepo()
		if sentryHook != nil {
			sentryHook.Flush()
		}
		_ = l.Stop()
		cancel()
	}()

	select {
	case <-sigCh:
		fmt.Println("received shutdown signal")
	case <-ctx.Done():
		fmt.Println("context cancelled")
	}
}

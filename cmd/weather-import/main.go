// Command weather-import loads observation workbooks from disk into the
// configured store.
//
//	weather-import [-config path] file.xlsx...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"weather-archive/config"
	"weather-archive/internal/archive"
	"weather-archive/internal/models"
	"weather-archive/internal/repositories"
	"weather-archive/internal/services/weather"
	"weather-archive/pkg/logger"
	"weather-archive/pkg/observe"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("weather-import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML config (default $CONFIG_PATH or config/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: weather-import [-config path] file.xlsx...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	var (
		cnf *config.Config
		err error
	)
	if *configPath != "" {
		cnf, err = config.NewConfigWithProvider(config.NewFileConfigProvider(*configPath))
	} else {
		cnf, err = config.NewConfig()
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	loc, err := cnf.Location()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	l := logger.New(logger.Options{
		AppName:  "weather-import",
		AppEnv:   cnf.App.Env,
		Level:    cnf.Log.Level,
		Location: loc,
	}, stderr)
	defer func() { _ = l.Stop() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := repositories.InitWeatherRepository(ctx, cnf.Database, loc, l)
	if err != nil {
		l.Error(err, map[string]any{"driver": cnf.Database.Driver})
		return 1
	}
	defer closeRepo()

	archiver, err := archive.InitArchiver(ctx, cnf.Archive)
	if err != nil {
		l.Error(err)
		return 1
	}

	uploads := make([]weather.Upload, 0, fs.NArg())
	for _, path := range fs.Args() {
		f, err := os.Open(path)
		if err != nil {
			l.Error(err, map[string]any{"file": path})
			return 1
		}
		defer func() { _ = f.Close() }()
		uploads = append(uploads, weather.Upload{Name: filepath.Base(path), Body: f})
	}

	// A one-shot import has no /metrics endpoint to register with.
	service := weather.NewWeatherService(repo, loc, l,
		weather.WithArchiver(archiver),
		weather.WithMetrics(observe.NewUnregisteredMetrics()),
	)
	res := service.UploadWeatherData(ctx, uploads)

	if err := printResult(stdout, res); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if !res.OK() {
		return 1
	}
	return 0
}

func printResult(w io.Writer, res *models.UploadResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

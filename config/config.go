package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Sentry   SentryConfig   `yaml:"sentry"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

// ServerConfig timeouts are in seconds.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout" split_words:"true"`
	WriteTimeout int    `yaml:"write_timeout" split_words:"true"`
	IdleTimeout  int    `yaml:"idle_timeout" split_words:"true"`
	BodyLimitMB  int    `yaml:"body_limit_mb" envconfig:"BODY_LIMIT_MB"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	URL        string `yaml:"url"`
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	MaxConns   int    `yaml:"max_conns" split_words:"true"`
}

// IngestConfig.TimeZone is the zone observation dates are recorded in.
type IngestConfig struct {
	TimeZone string `yaml:"time_zone" split_words:"true"`
}

type ArchiveConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id" split_words:"true"`
	SecretAccessKey string `yaml:"secret_access_key" split_words:"true"`
}

type SentryConfig struct {
	DSN   string `yaml:"dsn"`
	Debug bool   `yaml:"debug"`
}

type ConfigProvider interface {
	Load() (*Config, error)
	Validate(config *Config) error
}

// FileConfigProvider reads a YAML file and then applies environment overrides.
type FileConfigProvider struct {
	path string
}

func NewFileConfigProvider(path string) *FileConfigProvider {
	return &FileConfigProvider{path: path}
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "weather-archive",
			Version: "1.0.0",
			Env:     "development",
		},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10,
			WriteTimeout: 10,
			IdleTimeout:  120,
			BodyLimitMB:  100,
		},
		Log: LogConfig{
			Level: "info",
		},
		Database: DatabaseConfig{
			Driver:     "sqlite3",
			SQLitePath: "data/weather.db",
			MaxConns:   10,
		},
		Ingest: IngestConfig{
			TimeZone: "Europe/Moscow",
		},
		Archive: ArchiveConfig{
			Prefix: "uploads",
		},
	}
}

func (p *FileConfigProvider) Load() (*Config, error) {
	config := defaultConfig()

	if err := p.loadFromFile(config); err != nil {
		return nil, err
	}

	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	return config, nil
}

// loadFromFile leaves config untouched when the file does not exist.
func (p *FileConfigProvider) loadFromFile(config *Config) error {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", p.path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config %s: %w", p.path, err)
	}
	return nil
}

func (p *FileConfigProvider) Validate(config *Config) error {
	if config.App.Name == "" {
		return errors.New("app.name is required")
	}
	if port, err := strconv.Atoi(config.Server.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("server.port must be a valid port number, got %q", config.Server.Port)
	}
	if config.Server.ReadTimeout <= 0 || config.Server.WriteTimeout <= 0 || config.Server.IdleTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if config.Server.BodyLimitMB <= 0 {
		return errors.New("server.body_limit_mb must be positive")
	}
	switch config.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", config.Log.Level)
	}
	switch config.Database.Driver {
	case "postgres":
		if config.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	case "sqlite3":
		if config.Database.SQLitePath == "" {
			return errors.New("database.sqlite_path is required for the sqlite3 driver")
		}
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite3, got %q", config.Database.Driver)
	}
	if _, err := config.Location(); err != nil {
		return err
	}
	if config.Archive.Enabled && config.Archive.Bucket == "" {
		return errors.New("archive.bucket is required when archive is enabled")
	}
	return nil
}

func NewConfigWithProvider(provider ConfigProvider) (*Config, error) {
	config, err := provider.Load()
	if err != nil {
		return nil, err
	}
	if err := provider.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// NewConfig loads config/config.yaml, or the file named by CONFIG_PATH.
func NewConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return NewConfigWithProvider(NewFileConfigProvider(path))
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Location returns the zone observation dates are interpreted in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Ingest.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("ingest.time_zone: %w", err)
	}
	return loc, nil
}

func (s ServerConfig) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(s.ReadTimeout) * time.Second,
		time.Duration(s.WriteTimeout) * time.Second,
		time.Duration(s.IdleTimeout) * time.Second
}

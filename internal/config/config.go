package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreDriverSqlite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	AllowedOrigins []string `toml:"allowed_origins"`

	// prometheus metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// storage
	StoreDriver    string `toml:"store_driver"`
	SqlitePath     string `toml:"sqlite_path"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	MigrationsPath string `toml:"migrations_path"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// workout
	RestDefaultSeconds int `toml:"rest_default_seconds"`

	// backups
	BackupDir              string `toml:"backup_dir"`
	WebhookURL             string `toml:"webhook_url"`
	SyncRateLimitPerMin    int    `toml:"sync_rate_limit_per_min"`
	DriveBackupsFolderName string `toml:"drive_backups_folder_name"`
	DriveShareWith         string `toml:"drive_share_with"`
}

// Secrets are never kept in the toml file; they come from the environment.
type Secrets struct {
	WebhookSecret    string `env:"GYMLOG_WEBHOOK_SECRET"`
	RedisPassword    string `env:"GYMLOG_REDIS_PASS"`
	PostgresPassword string `env:"GYMLOG_POSTGRES_PASS"`
	SentryDSN        string `env:"SENTRY_DSN"`
	DriveCredentials string `env:"GYMLOG_DRIVE_CREDENTIALS_FILE"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED, default=false"`
	HoneycombApiKey  string `env:"HONEYCOMB_API_KEY"`
	OtelServiceName  string `env:"OTEL_SERVICE_NAME, default=gymlog"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var cfgToml Toml
	if _, err := toml.DecodeFile(path, &cfgToml); err != nil {
		return nil, fmt.Errorf("decode toml config [%s]: %w", path, err)
	}

	cfg, err := cfgToml.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func LoadSecrets(ctx context.Context) (*Secrets, error) {
	var secrets Secrets
	if err := envconfig.Process(ctx, &secrets); err != nil {
		return nil, fmt.Errorf("process env secrets: %w", err)
	}
	return &secrets, nil
}

func (c *Config) applyDefaults() {
	if c.StoreDriver == "" {
		c.StoreDriver = StoreDriverSqlite
	}
	if c.SqlitePath == "" {
		c.SqlitePath = "./gymlog.db"
	}
	if c.RestDefaultSeconds <= 0 {
		c.RestDefaultSeconds = 90
	}
	if c.BackupDir == "" {
		c.BackupDir = "./backups"
	}
	if c.SyncRateLimitPerMin <= 0 {
		c.SyncRateLimitPerMin = 5
	}
	if c.DriveBackupsFolderName == "" {
		c.DriveBackupsFolderName = "gymlog-backup"
	}
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverSqlite:
	case StoreDriverPostgres:
		if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "" {
			return fmt.Errorf("postgres store requires host, port and db name")
		}
	default:
		return fmt.Errorf("unknown store driver: %s", c.StoreDriver)
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

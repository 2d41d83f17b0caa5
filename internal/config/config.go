package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrMissingDatabaseURL is returned when no database DSN is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Defaults applied by Load and LoadFromFile.
const (
	DefaultServerPort      = "8080"
	DefaultLogFormat       = "dev"
	DefaultStaticDir       = "public"
	DefaultCORSOrigin      = "*"
	DefaultMigrationsDir   = "migrations"
	DefaultCountriesFile   = "config/countries.yaml"
	DefaultImportBatchSize = 50
	DefaultCacheTTL        = time.Minute
)

// Config holds application configuration.
type Config struct {
	DatabaseURL     string        `yaml:"database_url" env:"DATABASE_URL"`
	ServerPort      string        `yaml:"server_port" env:"PORT"`
	RedisURL        string        `yaml:"redis_url" env:"REDIS_URL"`
	LogFormat       string        `yaml:"log_format" env:"LOG_FORMAT"`
	StaticDir       string        `yaml:"static_dir" env:"STATIC_DIR"`
	CORSOrigin      string        `yaml:"cors_origin" env:"CORS_ORIGIN"`
	MigrationsDir   string        `yaml:"migrations_dir" env:"MIGRATIONS_DIR"`
	SeedDataPath    string        `yaml:"seed_data_path" env:"SEED_DATA_PATH"`
	CountriesFile   string        `yaml:"countries_file" env:"COUNTRIES_FILE"`
	ImportBatchSize int           `yaml:"import_batch_size" env:"IMPORT_BATCH_SIZE"`
	CacheTTL        time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
	// PushgatewayURL receives the import metrics of a seed run. Empty disables the push.
	PushgatewayURL string `yaml:"pushgateway_url" env:"PUSHGATEWAY_URL"`
}

// Load builds config from environment variables.
// If DATABASE_URL is not set, Load first tries .env.local and .env from the
// current directory and the executable's directory. DATABASE_URL is required.
func Load() (*Config, error) {
	if os.Getenv("DATABASE_URL") == "" {
		loadEnvFiles()
	}
	c := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ServerPort:    os.Getenv("PORT"),
		RedisURL:      os.Getenv("REDIS_URL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
		StaticDir:     os.Getenv("STATIC_DIR"),
		CORSOrigin:    os.Getenv("CORS_ORIGIN"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
		SeedDataPath:  os.Getenv("SEED_DATA_PATH"),
		CountriesFile: os.Getenv("COUNTRIES_FILE"),

		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
	}
	if s := os.Getenv("IMPORT_BATCH_SIZE"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("IMPORT_BATCH_SIZE: %w", err)
		}
		c.ImportBatchSize = n
	}
	if s := os.Getenv("CACHE_TTL"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.CacheTTL = d
	}
	if c.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = DefaultServerPort
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.StaticDir == "" {
		c.StaticDir = DefaultStaticDir
	}
	if c.CORSOrigin == "" {
		c.CORSOrigin = DefaultCORSOrigin
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = DefaultMigrationsDir
	}
	if c.CountriesFile == "" {
		c.CountriesFile = DefaultCountriesFile
	}
	if c.ImportBatchSize <= 0 {
		c.ImportBatchSize = DefaultImportBatchSize
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
}

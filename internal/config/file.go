package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	DatabaseURL     string `yaml:"database_url"`
	ServerPort      string `yaml:"server_port"`
	RedisURL        string `yaml:"redis_url"`
	LogFormat       string `yaml:"log_format"`
	StaticDir       string `yaml:"static_dir"`
	CORSOrigin      string `yaml:"cors_origin"`
	MigrationsDir   string `yaml:"migrations_dir"`
	SeedDataPath    string `yaml:"seed_data_path"`
	CountriesFile   string `yaml:"countries_file"`
	ImportBatchSize int    `yaml:"import_batch_size"`
	CacheTTL        string `yaml:"cache_ttl"`
	PushgatewayURL  string `yaml:"pushgateway_url"`
}

// LoadFromFile loads config from a YAML file. database_url is required.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	c := &Config{
		DatabaseURL:     f.DatabaseURL,
		ServerPort:      f.ServerPort,
		RedisURL:        f.RedisURL,
		LogFormat:       f.LogFormat,
		StaticDir:       f.StaticDir,
		CORSOrigin:      f.CORSOrigin,
		MigrationsDir:   f.MigrationsDir,
		SeedDataPath:    f.SeedDataPath,
		CountriesFile:   f.CountriesFile,
		ImportBatchSize: f.ImportBatchSize,
		PushgatewayURL:  f.PushgatewayURL,
	}
	if f.CacheTTL != "" {
		d, err := time.ParseDuration(f.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("cache_ttl: %w", err)
		}
		c.CacheTTL = d
	}
	c.applyDefaults()
	return c, nil
}

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order. The first one found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/covidash/config.yaml",
}

const (
	// ConfigPathEnvVar overrides the config file path.
	ConfigPathEnvVar = "CONFIG_PATH"

	// SecretsPathEnvVar overrides the dotenv secrets file path.
	SecretsPathEnvVar = "SECRETS_PATH"

	// DefaultSecretsPath is read when SECRETS_PATH is unset.
	DefaultSecretsPath = ".env"

	// ConnectionStringEnvVar holds the warehouse connection string.
	ConnectionStringEnvVar = "POSTGRES_CONNECTION_STRING"
)

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			QueryTimeout: 0,
			MaxMemory:    "1GB",
			Threads:      0, // 0 = DuckDB default
		},
		Dataset: DatasetConfig{
			Cities:          []string{"Amsterdam", "Rotterdam", "Groningen"},
			Year:            2022,
			CaseTable:       "covid.municipality_totals_daily",
			ReviewTable:     "reviews",
			RestaurantTable: "restaurants",
		},
		Cache: CacheConfig{
			TTL: 0,
		},
		Server: ServerConfig{
			Port:        8501,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration in layers: defaults, YAML file, then the
// environment (after the dotenv secrets file has been merged into it).
func LoadWithKoanf() (*Config, error) {
	if err := loadSecretsFile(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadSecretsFile merges the dotenv secrets file into the process environment.
// A missing default file is fine; a missing explicit SECRETS_PATH is an error.
func loadSecretsFile() error {
	path := os.Getenv(SecretsPathEnvVar)
	explicit := path != ""
	if !explicit {
		path = DefaultSecretsPath
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load secrets file %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"dataset.cities",
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Warehouse secret
	"postgres_connection_string": "warehouse.connection_string",

	// Database
	"database_driver":        "database.driver",
	"database_query_timeout": "database.query_timeout",
	"duckdb_max_memory":      "database.max_memory",
	"duckdb_threads":         "database.threads",

	// Dataset scope
	"dataset_cities":           "dataset.cities",
	"dataset_year":             "dataset.year",
	"dataset_case_table":       "dataset.case_table",
	"dataset_review_table":     "dataset.review_table",
	"dataset_restaurant_table": "dataset.restaurant_table",

	// Cache
	"cache_ttl": "cache.ttl",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc returns the koanf path for a mapped variable and "" for
// everything else, so unrelated environment variables never leak into config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

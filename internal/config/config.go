// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

// Package config loads Covidash configuration from defaults, an optional YAML
// file, an optional dotenv secrets file and the process environment.
//
// Precedence, highest first:
//
//  1. Environment variables (POSTGRES_CONNECTION_STRING, HTTP_PORT, ...)
//  2. Variables from the dotenv secrets file (.env or SECRETS_PATH); never
//     overrides variables that are already set
//  3. YAML config file (config.yaml or CONFIG_PATH)
//  4. Built-in defaults
//
// The warehouse connection string is the only required setting.
package config

import (
	"fmt"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Warehouse WarehouseConfig `koanf:"warehouse"`
	Database  DatabaseConfig  `koanf:"database"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Cache     CacheConfig     `koanf:"cache"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// WarehouseConfig holds the secret used to reach the read-only warehouse.
type WarehouseConfig struct {
	// ConnectionString is a PostgreSQL URL or key/value DSN, or a DuckDB
	// path (duckdb://path, *.duckdb, :memory:). Never logged.
	ConnectionString string `koanf:"connection_string"`
}

// DatabaseConfig holds driver-level tuning.
type DatabaseConfig struct {
	// Driver forces "postgres" or "duckdb". Empty means detect from the connection string.
	Driver string `koanf:"driver"`

	// QueryTimeout bounds each warehouse query. Zero means no deadline beyond the request context.
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// MaxMemory and Threads apply to DuckDB only.
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// DatasetConfig names the scope of both aggregate queries.
type DatasetConfig struct {
	Cities          []string `koanf:"cities"`
	Year            int      `koanf:"year"`
	CaseTable       string   `koanf:"case_table"`
	ReviewTable     string   `koanf:"review_table"`
	RestaurantTable string   `koanf:"restaurant_table"`
}

// CacheConfig controls the loader memo cache.
type CacheConfig struct {
	// TTL of zero or less keeps entries for the life of the process.
	TTL time.Duration `koanf:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads the configuration. See the package documentation for precedence.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// ServerAddr returns host:port for the HTTP listener.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

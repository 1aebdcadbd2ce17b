// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrMissingConnectionString is returned when no warehouse secret was found in any source.
var ErrMissingConnectionString = errors.New(ConnectionStringEnvVar + " is required")

// tableIdentifierPattern allows table or schema.table. The names are
// interpolated into SQL, so nothing else is accepted.
var tableIdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateWarehouse(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateWarehouse() error {
	if strings.TrimSpace(c.Warehouse.ConnectionString) == "" {
		return ErrMissingConnectionString
	}
	return nil
}

var validDrivers = map[string]bool{
	"":         true,
	"postgres": true,
	"duckdb":   true,
}

func (c *Config) validateDatabase() error {
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("DATABASE_DRIVER must be one of: postgres, duckdb")
	}
	if c.Database.QueryTimeout < 0 {
		return fmt.Errorf("DATABASE_QUERY_TIMEOUT must not be negative")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateDataset() error {
	if err := c.validateCities(); err != nil {
		return err
	}
	if c.Dataset.Year < 1900 || c.Dataset.Year > 9999 {
		return fmt.Errorf("DATASET_YEAR must be between 1900 and 9999")
	}
	return c.validateTables()
}

func (c *Config) validateCities() error {
	if len(c.Dataset.Cities) == 0 {
		return fmt.Errorf("DATASET_CITIES must list at least one city")
	}
	seen := make(map[string]bool, len(c.Dataset.Cities))
	for _, city := range c.Dataset.Cities {
		if strings.TrimSpace(city) == "" {
			return fmt.Errorf("DATASET_CITIES must not contain empty names")
		}
		if seen[city] {
			return fmt.Errorf("DATASET_CITIES contains duplicate city %q", city)
		}
		seen[city] = true
	}
	return nil
}

func (c *Config) validateTables() error {
	tables := []struct {
		env   string
		value string
	}{
		{"DATASET_CASE_TABLE", c.Dataset.CaseTable},
		{"DATASET_REVIEW_TABLE", c.Dataset.ReviewTable},
		{"DATASET_RESTAURANT_TABLE", c.Dataset.RestaurantTable},
	}
	for _, t := range tables {
		if !tableIdentifierPattern.MatchString(t.value) {
			return fmt.Errorf("%s %q is not a valid table identifier", t.env, t.value)
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

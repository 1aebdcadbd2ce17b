// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

// Package database is the read-only warehouse client. It issues exactly two
// aggregate queries (case totals and review aggregates) against PostgreSQL
// through pgx, or against a DuckDB snapshot file.
package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/tomtom215/covidash/internal/config"
	"github.com/tomtom215/covidash/internal/logging"
)

// Driver identifies the SQL engine behind the warehouse.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverDuckDB   Driver = "duckdb"
)

const (
	duckDBScheme = "duckdb://"
	pingTimeout  = 10 * time.Second
)

// DB wraps the warehouse connection pool. conn is set once in Open and never
// reassigned; closed records a Close so callers get ErrClosed.
type DB struct {
	conn         *sql.DB
	closed       atomic.Bool
	driver       Driver
	fingerprint  string
	queryTimeout time.Duration
}

// Open connects to the warehouse named by cfg.Warehouse.ConnectionString and
// pings it. The connection string never appears in errors or logs.
func Open(cfg *config.Config) (*DB, error) {
	dsn := strings.TrimSpace(cfg.Warehouse.ConnectionString)
	driver, err := DetectDriver(dsn, cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	var conn *sql.DB
	switch driver {
	case DriverPostgres:
		conn, err = openPostgres(dsn)
	case DriverDuckDB:
		conn, err = openDuckDB(dsn, &cfg.Database)
	}
	if err != nil {
		return nil, err
	}

	db := &DB{
		conn:         conn,
		driver:       driver,
		fingerprint:  Fingerprint(dsn),
		queryTimeout: cfg.Database.QueryTimeout,
	}
	db.configureConnectionPool()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to reach %s warehouse: %w", driver, err)
	}

	logging.Info().
		Str("driver", string(driver)).
		Str("fingerprint", db.fingerprint).
		Dur("query_timeout", db.queryTimeout).
		Msg("Connected to warehouse")

	return db, nil
}

// DetectDriver picks the driver for dsn. A non-empty override wins.
func DetectDriver(dsn, override string) (Driver, error) {
	switch Driver(override) {
	case DriverPostgres, DriverDuckDB:
		return Driver(override), nil
	case "":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, override)
	}

	lower := strings.ToLower(dsn)
	switch {
	case lower == "":
		return "", ErrEmptyConnectionString
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(lower, duckDBScheme),
		strings.HasSuffix(lower, ".duckdb"),
		strings.HasPrefix(lower, ":memory:"):
		return DriverDuckDB, nil
	case strings.Contains(lower, "host=") || strings.Contains(lower, "dbname="):
		return DriverPostgres, nil
	default:
		return "", ErrUnknownDriver
	}
}

func openPostgres(dsn string) (*sql.DB, error) {
	pgCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		// pgx echoes the DSN in parse errors, so only the category is kept.
		return nil, fmt.Errorf("%w: postgres connection string could not be parsed", ErrInvalidConnectionString)
	}
	pgCfg.RuntimeParams["application_name"] = "covidash"
	pgCfg.RuntimeParams["default_transaction_read_only"] = "on"
	return stdlib.OpenDB(*pgCfg), nil
}

func openDuckDB(dsn string, cfg *config.DatabaseConfig) (*sql.DB, error) {
	path := strings.TrimPrefix(dsn, duckDBScheme)
	if path == "" {
		return nil, fmt.Errorf("%w: empty duckdb path", ErrInvalidConnectionString)
	}

	params := []string{}
	if !strings.HasPrefix(path, ":memory:") && !strings.Contains(path, "access_mode=") {
		params = append(params, "access_mode=read_only")
	}
	if cfg.MaxMemory != "" {
		params = append(params, "max_memory="+cfg.MaxMemory)
	}
	if cfg.Threads > 0 {
		params = append(params, fmt.Sprintf("threads=%d", cfg.Threads))
	}

	connStr := path
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		connStr = path + sep + strings.Join(params, "&")
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb warehouse: %w", err)
	}
	return conn, nil
}

func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(4)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Fingerprint returns a short, stable, non-reversible identifier for a
// connection string, safe for logs and cache keys.
func Fingerprint(dsn string) string {
	sum := sha256.Sum256([]byte(dsn))
	return hex.EncodeToString(sum[:8])
}

// Fingerprint identifies the warehouse this DB is connected to.
func (db *DB) Fingerprint() string {
	return db.fingerprint
}

// Driver returns the engine in use.
func (db *DB) Driver() Driver {
	return db.driver
}

// Conn returns the underlying pool. Tests use it to seed fixtures.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks that the warehouse is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return db.closedErr(db.conn.PingContext(ctx))
}

// Close releases the pool. Later calls are no-ops. Safe to call while
// queries are running; they finish or fail with ErrClosed.
func (db *DB) Close() error {
	if db.closed.Swap(true) {
		return nil
	}
	return db.conn.Close()
}

// closedErr replaces a failure caused by a concurrent Close with ErrClosed.
func (db *DB) closedErr(err error) error {
	if err != nil && db.closed.Load() {
		return ErrClosed
	}
	return err
}

// queryContext applies the configured query timeout, if any.
func (db *DB) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultPostgresImage is the PostgreSQL image used for warehouse tests.
	DefaultPostgresImage = "postgres:16-alpine"

	// DefaultPostgresPort is the container-side PostgreSQL port.
	DefaultPostgresPort = "5432/tcp"

	postgresUser     = "reader"
	postgresPassword = "reader-password"
	postgresDB       = "warehouse"
)

// WarehouseFixtureSQL creates the case, review and restaurant tables and
// seeds rows both inside and outside the default dataset scope.
const WarehouseFixtureSQL = `
CREATE SCHEMA covid;

CREATE TABLE covid.municipality_totals_daily (
	municipality_name   text,
	date_of_publication date,
	total_reported      integer,
	deceased            integer
);

INSERT INTO covid.municipality_totals_daily VALUES
	('Rotterdam', '2022-01-01', 5, 0),
	('Amsterdam', '2022-01-02', 12, 1),
	('Amsterdam', '2022-01-01', 10, 0),
	('Groningen', '2022-12-31', 3, NULL),
	('Utrecht',   '2022-01-01', 99, 9),
	('Amsterdam', '2021-12-31', 7, 0),
	('Amsterdam', '2023-01-01', 8, 0);

CREATE TABLE restaurants (
	restaurant_id integer PRIMARY KEY,
	location_city text
);

INSERT INTO restaurants VALUES (1, 'Amsterdam'), (2, 'Amsterdam'), (3, 'Rotterdam'), (4, 'Utrecht');

CREATE TABLE reviews (
	review_id       integer PRIMARY KEY,
	restaurant_id   integer REFERENCES restaurants (restaurant_id),
	datetime        timestamp,
	rating_delivery integer,
	rating_food     integer
);

INSERT INTO reviews VALUES
	(1, 1, '2022-01-01 12:00:00', 4, 5),
	(2, 2, '2022-01-01 19:30:00', 2, 3),
	(3, 1, '2022-01-03 08:00:00', 5, 4),
	(4, 3, '2022-01-01 13:00:00', NULL, NULL),
	(5, 4, '2022-01-01 13:00:00', 1, 1),
	(6, 1, '2021-12-31 23:59:59', 1, 1);
`

// PostgresContainer is a running PostgreSQL instance.
type PostgresContainer struct {
	testcontainers.Container
	ConnectionString string
}

// PostgresOption configures the container.
type PostgresOption func(*postgresConfig)

type postgresConfig struct {
	image        string
	initSQL      string
	startTimeout time.Duration
}

// WithPostgresImage overrides the image.
func WithPostgresImage(image string) PostgresOption {
	return func(c *postgresConfig) {
		c.image = image
	}
}

// WithInitSQL runs sql once at first start, via docker-entrypoint-initdb.d.
func WithInitSQL(sql string) PostgresOption {
	return func(c *postgresConfig) {
		c.initSQL = sql
	}
}

// WithPostgresStartTimeout bounds how long to wait for readiness.
func WithPostgresStartTimeout(timeout time.Duration) PostgresOption {
	return func(c *postgresConfig) {
		c.startTimeout = timeout
	}
}

// NewPostgresContainer starts PostgreSQL and returns a postgres:// URL for it.
//
//	pg, err := testinfra.NewPostgresContainer(ctx, testinfra.WithInitSQL(testinfra.WarehouseFixtureSQL))
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, pg)
func NewPostgresContainer(ctx context.Context, opts ...PostgresOption) (*PostgresContainer, error) {
	cfg := &postgresConfig{
		image:        DefaultPostgresImage,
		startTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultPostgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
			"TZ":                "UTC",
		},
		// The server restarts once after running init scripts, so the
		// ready line appears twice.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(DefaultPostgresPort),
		).WithStartupTimeout(cfg.startTimeout),
	}
	if cfg.initSQL != "" {
		req.Files = []testcontainers.ContainerFile{{
			Reader:            strings.NewReader(cfg.initSQL),
			ContainerFilePath: "/docker-entrypoint-initdb.d/01-init.sql",
			FileMode:          0o644,
		}}
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, DefaultPostgresPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &PostgresContainer{
		Container: container,
		ConnectionString: fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			postgresUser, postgresPassword, host, port.Port(), postgresDB),
	}, nil
}

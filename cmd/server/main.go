// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

// Package main is the entry point for the Covidash server.
//
// Covidash shows daily COVID-19 cases next to daily food-delivery review
// counts for a fixed set of Dutch municipalities. Both series are read from
// a read-only warehouse (PostgreSQL or DuckDB), memoized for the life of the
// process and served as an HTML page plus a JSON API.
//
// # Startup
//
//  1. Configuration (Koanf v2: defaults, config.yaml, .env secrets, environment)
//  2. Logging (zerolog)
//  3. Warehouse connection
//  4. Dataset loader with memo cache
//  5. HTTP router
//  6. Supervisor tree: dataset warmup, HTTP server, uptime metrics
//
// # Configuration
//
// POSTGRES_CONNECTION_STRING is required. Everything else has a default:
//
//	export POSTGRES_CONNECTION_STRING=postgres://reader:secret@db:5432/warehouse
//	export HTTP_PORT=8501
//	./covidash
//
// A local DuckDB file works too:
//
//	export POSTGRES_CONNECTION_STRING=duckdb:///data/warehouse.duckdb
//
// # Signal Handling
//
// SIGINT and SIGTERM stop the supervisor tree. The HTTP server drains
// in-flight requests before the cache and warehouse connection are closed.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/covidash/internal/api"
	"github.com/tomtom215/covidash/internal/cache"
	"github.com/tomtom215/covidash/internal/config"
	"github.com/tomtom215/covidash/internal/database"
	"github.com/tomtom215/covidash/internal/dataset"
	"github.com/tomtom215/covidash/internal/logging"
	"github.com/tomtom215/covidash/internal/metrics"
	"github.com/tomtom215/covidash/internal/models"
	"github.com/tomtom215/covidash/internal/supervisor"
	"github.com/tomtom215/covidash/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Strs("cities", cfg.Dataset.Cities).
		Int("year", cfg.Dataset.Year).
		Msg("Starting Covidash")

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to warehouse")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing warehouse connection")
		}
	}()
	logging.Info().
		Str("driver", string(db.Driver())).
		Str("fingerprint", db.Fingerprint()).
		Msg("Warehouse connection opened")

	memo := cache.New(cfg.Cache.TTL)
	defer memo.Close()

	loader := dataset.NewLoader(db, models.DatasetScope{
		Cities:          cfg.Dataset.Cities,
		Year:            cfg.Dataset.Year,
		CaseTable:       cfg.Dataset.CaseTable,
		ReviewTable:     cfg.Dataset.ReviewTable,
		RestaurantTable: cfg.Dataset.RestaurantTable,
	}, memo)

	handler := api.NewHandler(loader, db, api.HandlerOptions{
		Version:         version,
		WarehouseDriver: string(db.Driver()),
	})
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFromSecurity(cfg.Security))

	addr := cfg.ServerAddr()
	server := &http.Server{
		Addr:              addr,
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	start := time.Now()
	metrics.SetAppInfo(version)

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	tree.AddDataService(services.NewWarmupService(loader, 0))
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))
	tree.AddAPIService(services.NewUptimeService(start, 0))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", addr).Msg("Supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Supervisor tree stopped unexpectedly")
		return 1
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	logging.Info().Dur("uptime", time.Since(start)).Msg("Covidash stopped")
	return 0
}

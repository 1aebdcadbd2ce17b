// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package api

import (
	"context"
	"html/template"
	"time"

	"github.com/tomtom215/covidash/internal/dataset"
	"github.com/tomtom215/covidash/internal/models"
)

// DatasetLoader is the memoized data access the handlers need.
// *dataset.Loader satisfies it.
type DatasetLoader interface {
	Load(ctx context.Context) (dataset.Data, error)
	Cases(ctx context.Context) ([]models.CaseRecord, error)
	Reviews(ctx context.Context) ([]models.ReviewAggregate, error)
	Invalidate() int
	Scope() models.DatasetScope
}

// Pinger checks warehouse reachability. *database.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerOptions carries the values reported by the health endpoints.
type HandlerOptions struct {
	Version         string
	WarehouseDriver string
	// PingTimeout bounds the readiness check. Zero means 2s.
	PingTimeout time.Duration
}

// Handler serves the dashboard routes.
type Handler struct {
	loader    DatasetLoader
	warehouse Pinger
	opts      HandlerOptions
	page      *template.Template
	startTime time.Time
}

// NewHandler creates a handler. warehouse may be nil, in which case the
// readiness probe always reports not ready.
func NewHandler(loader DatasetLoader, warehouse Pinger, opts HandlerOptions) *Handler {
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 2 * time.Second
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Handler{
		loader:    loader,
		warehouse: warehouse,
		opts:      opts,
		page:      pageTemplate,
		startTime: time.Now(),
	}
}

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package services

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/covidash/internal/dataset"
	"github.com/tomtom215/covidash/internal/logging"
)

// Preloader loads the memoized datasets. *dataset.Loader satisfies it.
type Preloader interface {
	Load(ctx context.Context) (dataset.Data, error)
}

// WarmupService fills the dataset cache once at startup so the first page
// view does not wait on the warehouse. It runs once and is never restarted.
// A failure is only logged: errors are not cached, so page requests retry.
type WarmupService struct {
	loader  Preloader
	timeout time.Duration
}

// NewWarmupService creates the service. A timeout of zero or less means 2m.
func NewWarmupService(loader Preloader, timeout time.Duration) *WarmupService {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &WarmupService{loader: loader, timeout: timeout}
}

// Serve implements suture.Service.
func (w *WarmupService) Serve(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	data, err := w.loader.Load(ctx)
	if err != nil {
		logging.Warn().Err(err).Dur("duration", time.Since(start)).
			Msg("Dataset warmup failed; data will load on first request")
		return suture.ErrDoNotRestart
	}

	logging.Info().
		Int("cases", len(data.Cases)).
		Int("reviews", len(data.Reviews)).
		Dur("duration", time.Since(start)).
		Msg("Datasets preloaded")
	return suture.ErrDoNotRestart
}

func (w *WarmupService) String() string {
	return "dataset-warmup"
}

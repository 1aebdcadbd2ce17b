// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

/*
Package dataset memoizes the two warehouse queries for the life of the process.

A Loader wraps a Source (normally *database.DB) and a cache.Cacher. The first
call to Cases or Reviews runs the query; later calls with the same source and
scope are served from the cache until Invalidate is called or the cache TTL
elapses. Concurrent misses on one key share a single query.

Failed queries are never cached, so a transient warehouse error is retried on
the next request. A shared query is not tied to the request that started it:
each caller stops waiting when its own context ends, and the query keeps
running for the others. A query that was in flight when Invalidate ran does
not store its result.
*/
package dataset

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/covidash/internal/cache"
	"github.com/tomtom215/covidash/internal/logging"
	"github.com/tomtom215/covidash/internal/metrics"
	"github.com/tomtom215/covidash/internal/models"
)

// Dataset names used in cache keys and metric labels.
const (
	CasesDataset   = "cases"
	ReviewsDataset = "reviews"
)

// Source runs the warehouse queries.
type Source interface {
	Fingerprint() string
	CaseTotals(ctx context.Context, scope models.DatasetScope) ([]models.CaseRecord, error)
	ReviewAggregates(ctx context.Context, scope models.DatasetScope) ([]models.ReviewAggregate, error)
}

// Data holds both loaded sequences.
type Data struct {
	Cases   []models.CaseRecord
	Reviews []models.ReviewAggregate
}

// Loader is safe for concurrent use.
type Loader struct {
	source Source
	scope  models.DatasetScope
	cache  cache.Cacher
	group  singleflight.Group

	// mu guards generation and orders cache writes against Invalidate.
	mu         sync.Mutex
	generation uint64
}

// NewLoader creates a loader for scope. The scope's city list is copied.
func NewLoader(source Source, scope models.DatasetScope, c cache.Cacher) *Loader {
	scope.Cities = slices.Clone(scope.Cities)
	return &Loader{
		source: source,
		scope:  scope,
		cache:  c,
	}
}

// Scope returns the query parameters the loader was built with.
func (l *Loader) Scope() models.DatasetScope {
	scope := l.scope
	scope.Cities = slices.Clone(l.scope.Cities)
	return scope
}

// cacheKeyParams is hashed into the cache key. Any field that changes the
// query result must be here.
type cacheKeyParams struct {
	Fingerprint     string   `json:"fingerprint"`
	Cities          []string `json:"cities"`
	Year            int      `json:"year"`
	CaseTable       string   `json:"case_table"`
	ReviewTable     string   `json:"review_table"`
	RestaurantTable string   `json:"restaurant_table"`
}

func (l *Loader) cacheKey(dataset string) string {
	return cache.GenerateKey(dataset, cacheKeyParams{
		Fingerprint:     l.source.Fingerprint(),
		Cities:          l.scope.Cities,
		Year:            l.scope.Year,
		CaseTable:       l.scope.CaseTable,
		ReviewTable:     l.scope.ReviewTable,
		RestaurantTable: l.scope.RestaurantTable,
	})
}

// Cases returns case totals for the loader's scope, sorted by
// (municipality, date). The returned slice is the caller's to modify.
func (l *Loader) Cases(ctx context.Context) ([]models.CaseRecord, error) {
	records, err := memoize(ctx, l, CasesDataset, func(ctx context.Context) ([]models.CaseRecord, error) {
		return l.source.CaseTotals(ctx, l.scope)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(records), nil
}

// Reviews returns review aggregates for the loader's scope, sorted by
// (city, date). The returned slice is the caller's to modify.
func (l *Loader) Reviews(ctx context.Context) ([]models.ReviewAggregate, error) {
	aggregates, err := memoize(ctx, l, ReviewsDataset, func(ctx context.Context) ([]models.ReviewAggregate, error) {
		return l.source.ReviewAggregates(ctx, l.scope)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(aggregates), nil
}

// Load returns both datasets, cases first. It stops at the first error.
func (l *Loader) Load(ctx context.Context) (Data, error) {
	cases, err := l.Cases(ctx)
	if err != nil {
		return Data{}, err
	}
	reviews, err := l.Reviews(ctx)
	if err != nil {
		return Data{}, err
	}
	return Data{Cases: cases, Reviews: reviews}, nil
}

// Invalidate drops every memoized result and returns how many entries were
// removed.
func (l *Loader) Invalidate() int {
	l.mu.Lock()
	l.generation++
	n := l.cache.Clear()
	l.mu.Unlock()

	metrics.RecordCacheInvalidation()
	logging.Info().Int("entries", n).Msg("Dataset cache invalidated")
	return n
}

func (l *Loader) currentGeneration() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

// store caches value unless Invalidate ran after generation was read.
func (l *Loader) store(key string, generation uint64, value any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generation != generation {
		return false
	}
	l.cache.Set(key, value)
	metrics.CacheSize.Set(float64(l.cache.GetStats().TotalKeys))
	return true
}

// memoize returns the cached value for dataset or runs fetch once, sharing
// the result with concurrent callers of the same key and generation.
func memoize[T any](ctx context.Context, l *Loader, dataset string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key := l.cacheKey(dataset)

	if cached, ok := l.cache.Get(key); ok {
		if value, ok := cached.([]T); ok {
			metrics.RecordCacheLookup(dataset, true)
			return value, nil
		}
		// Unexpected type under our key; drop it and reload.
		l.cache.Delete(key)
	}
	metrics.RecordCacheLookup(dataset, false)

	generation := l.currentGeneration()
	flightKey := key + "#" + strconv.FormatUint(generation, 10)
	// Keeps request values (IDs for logging) but not the caller's deadline.
	fetchCtx := context.WithoutCancel(ctx)

	ch := l.group.DoChan(flightKey, func() (any, error) {
		value, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if !l.store(key, generation, value) {
			logging.Ctx(fetchCtx).Debug().Str("dataset", dataset).Msg("Discarded result loaded before invalidation")
		}
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("load %s: %w", dataset, res.Err)
		}
		logging.Ctx(ctx).Debug().
			Str("dataset", dataset).
			Bool("shared", res.Shared).
			Msg("Dataset loaded from warehouse")
		return res.Val.([]T), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s: %w", dataset, ctx.Err())
	}
}

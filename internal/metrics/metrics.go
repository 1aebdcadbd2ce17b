// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Warehouse
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warehouse_query_duration_seconds",
			Help:    "Duration of warehouse queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warehouse_query_errors_total",
			Help: "Total number of failed warehouse queries",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBRowsReturned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warehouse_rows_returned_total",
			Help: "Total number of rows read from the warehouse",
		},
		[]string{"operation"},
	)

	// Loader memo cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_cache_hits_total",
			Help: "Total number of dataset cache hits",
		},
		[]string{"dataset"}, // "cases", "reviews"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_cache_misses_total",
			Help: "Total number of dataset cache misses",
		},
		[]string{"dataset"},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_cache_entries",
			Help: "Current number of cached datasets",
		},
	)

	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataset_cache_invalidations_total",
			Help: "Total number of explicit cache invalidations",
		},
	)

	// Dashboard view
	ViewComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_view_computations_total",
			Help: "Total number of dashboard view computations by outcome",
		},
		[]string{"outcome"}, // "ok", "no_data", "invalid_range", "error"
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// System
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records one warehouse query.
func RecordDBQuery(operation, table string, duration time.Duration, rows int, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, errorType(err)).Inc()
		return
	}
	DBRowsReturned.WithLabelValues(operation).Add(float64(rows))
}

// errorType keeps label cardinality bounded.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "query"
	}
}

// RecordCacheLookup records a memo cache lookup for the named dataset.
func RecordCacheLookup(dataset string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(dataset).Inc()
		return
	}
	CacheMisses.WithLabelValues(dataset).Inc()
}

// RecordCacheInvalidation records an explicit invalidation.
func RecordCacheInvalidation() {
	CacheInvalidations.Inc()
	CacheSize.Set(0)
}

// RecordViewComputation records the outcome of one dashboard view computation.
func RecordViewComputation(outcome string) {
	ViewComputations.WithLabelValues(outcome).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetAppInfo publishes the build version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// TrackUptime updates app_uptime_seconds every interval until ctx is done.
func TrackUptime(ctx context.Context, start time.Time, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		AppUptime.Set(time.Since(start).Seconds())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

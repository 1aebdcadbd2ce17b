// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package models

import (
	"time"
)

// APIResponse is the envelope for every JSON endpoint.
//
//	{
//	  "status": "success",
//	  "data": {...},
//	  "metadata": {"timestamp": "2026-01-10T12:00:00Z", "query_time_ms": 12, "cached": true}
//	}
//
// Status is "success" or "error". On error, Error is set and Data is null.
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries timing and cache information for a response.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	Count       int       `json:"count,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes in use: VALIDATION_ERROR, NO_DATA, DATABASE_ERROR, INTERNAL_ERROR,
// RATE_LIMIT_EXCEEDED.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CacheInvalidation is returned by the cache invalidation endpoint.
type CacheInvalidation struct {
	EntriesCleared int `json:"entries_cleared"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status             string  `json:"status"`
	Version            string  `json:"version"`
	WarehouseDriver    string  `json:"warehouse_driver,omitempty"`
	WarehouseReachable bool    `json:"warehouse_reachable"`
	Uptime             float64 `json:"uptime_seconds"`
}

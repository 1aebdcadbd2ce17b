// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

// Package cache provides the in-memory memo cache behind the dataset loaders.
package cache

// Cacher is the subset of Cache used by consumers, so tests can observe or
// replace the storage.
type Cacher interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	Clear() int
	GetStats() Stats
}

var _ Cacher = (*Cache)(nil)

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/covidash/internal/logging"
)

var (
	// ErrEmptyConnectionString is returned by DetectDriver for an empty DSN.
	ErrEmptyConnectionString = errors.New("warehouse connection string is empty")

	// ErrUnknownDriver means the DSN matched no supported engine.
	ErrUnknownDriver = errors.New("unrecognised warehouse driver")

	// ErrInvalidConnectionString means the DSN was recognised but malformed.
	ErrInvalidConnectionString = errors.New("invalid warehouse connection string")

	// ErrInvalidIdentifier means a configured table name is not a plain identifier.
	ErrInvalidIdentifier = errors.New("invalid table identifier")

	// ErrEmptyScope means no cities were given.
	ErrEmptyScope = errors.New("dataset scope has no cities")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("warehouse connection is closed")
)

// closeWithLog closes a resource and logs a failure.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource on an error path where the close error is not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

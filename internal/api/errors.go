// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/covidash/internal/dashboard"
	"github.com/tomtom215/covidash/internal/validation"
)

// Error codes returned in models.APIError.
const (
	CodeValidation  = validation.CodeValidationError
	CodeNoData      = "NO_DATA"
	CodeDatabase    = "DATABASE_ERROR"
	CodeInternal    = "INTERNAL_ERROR"
	CodeRateLimited = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
)

// apiFailure is how a handler error is reported to the client.
type apiFailure struct {
	status  int
	code    string
	message string
	outcome string
}

// classifyError maps a load or view error to its HTTP response. Warehouse
// error text is logged but never returned to the client.
func classifyError(err error) apiFailure {
	switch {
	case errors.Is(err, dashboard.ErrNoCaseData):
		return apiFailure{http.StatusNotFound, CodeNoData, dashboard.NoCaseDataMessage, "no_data"}
	case errors.Is(err, dashboard.ErrInvalidRange):
		return apiFailure{http.StatusBadRequest, CodeValidation, "start must not be after end", "invalid_range"}
	case errors.Is(err, context.DeadlineExceeded):
		return apiFailure{http.StatusServiceUnavailable, CodeUnavailable, "Warehouse query timed out", "error"}
	case errors.Is(err, context.Canceled):
		return apiFailure{http.StatusServiceUnavailable, CodeUnavailable, "Request canceled", "error"}
	default:
		return apiFailure{http.StatusInternalServerError, CodeDatabase, "Failed to load dashboard data", "error"}
	}
}

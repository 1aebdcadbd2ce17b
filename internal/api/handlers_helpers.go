// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/covidash/internal/dashboard"
	"github.com/tomtom215/covidash/internal/logging"
	"github.com/tomtom215/covidash/internal/models"
	"github.com/tomtom215/covidash/internal/validation"
)

// sanitizeLogValue escapes control characters so request input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}

func respondSuccess(w http.ResponseWriter, data any, start time.Time, count int) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       count,
		},
	})
}

// validateRequest validates v and converts failures to a VALIDATION_ERROR.
func validateRequest(v any) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// ViewRequest holds the dashboard control query parameters.
type ViewRequest struct {
	RawCases   string `query:"raw_cases" validate:"omitempty,boolstr"`
	RawReviews string `query:"raw_reviews" validate:"omitempty,boolstr"`
	Start      string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End        string `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

func viewRequestFrom(r *http.Request) ViewRequest {
	q := r.URL.Query()
	return ViewRequest{
		RawCases:   strings.TrimSpace(q.Get("raw_cases")),
		RawReviews: strings.TrimSpace(q.Get("raw_reviews")),
		Start:      strings.TrimSpace(q.Get("start")),
		End:        strings.TrimSpace(q.Get("end")),
	}
}

// parseViewState validates the request's query parameters and converts
// them to a dashboard.State. Unset dates are left zero so the view falls
// back to the case bounds.
func parseViewState(r *http.Request) (dashboard.State, *models.APIError) {
	req := viewRequestFrom(r)
	if apiErr := validateRequest(&req); apiErr != nil {
		return dashboard.State{}, apiErr
	}

	var state dashboard.State
	// Validated above, so parse errors cannot occur.
	state.ShowRawCases, _ = parseBoolParam(req.RawCases)
	state.ShowRawReviews, _ = parseBoolParam(req.RawReviews)

	if req.Start == "" && req.End == "" {
		return state, nil
	}
	var rng models.DateRange
	if req.Start != "" {
		rng.Start, _ = models.ParseDate(req.Start)
	}
	if req.End != "" {
		rng.End, _ = models.ParseDate(req.End)
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && !rng.Valid() {
		return dashboard.State{}, &models.APIError{
			Code:    CodeValidation,
			Message: "start must not be after end",
			Details: map[string]any{"start": req.Start, "end": req.End},
		}
	}
	state.Range = &rng
	return state, nil
}

func parseBoolParam(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/covidash/internal/dashboard"
	"github.com/tomtom215/covidash/internal/logging"
	"github.com/tomtom215/covidash/internal/metrics"
	"github.com/tomtom215/covidash/internal/models"
)

// computeView loads both datasets and derives the view for state. Loading
// stops at the first failure, so nothing is rendered from partial data.
func (h *Handler) computeView(ctx context.Context, state dashboard.State) (*dashboard.ViewModel, error) {
	data, err := h.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	vm, err := dashboard.ComputeView(state, dashboard.Data{
		Year:    h.loader.Scope().Year,
		Cases:   data.Cases,
		Reviews: data.Reviews,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordViewComputation("ok")
	return vm, nil
}

// failView logs err, records its outcome and returns how to report it.
func (h *Handler) failView(r *http.Request, err error) apiFailure {
	failure := classifyError(err)
	metrics.RecordViewComputation(failure.outcome)

	event := logging.Ctx(r.Context()).Warn()
	if failure.status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("code", failure.code).Msg("Dashboard view failed")
	return failure
}

// View returns the dashboard view model as JSON.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	state, apiErr := parseViewState(r)
	if apiErr != nil {
		metrics.RecordViewComputation("invalid_request")
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	vm, err := h.computeView(r.Context(), state)
	if err != nil {
		failure := h.failView(r, err)
		respondError(w, failure.status, failure.code, failure.message, nil)
		return
	}

	respondSuccess(w, vm, start, len(vm.FilteredCases)+len(vm.FilteredReviews))
}

// Cases returns the unfiltered case totals.
func (h *Handler) Cases(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	records, err := h.loader.Cases(r.Context())
	if err != nil {
		failure := classifyError(err)
		respondError(w, failure.status, failure.code, failure.message, err)
		return
	}
	if records == nil {
		records = []models.CaseRecord{}
	}
	respondSuccess(w, records, start, len(records))
}

// Reviews returns the unfiltered review aggregates.
func (h *Handler) Reviews(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	aggregates, err := h.loader.Reviews(r.Context())
	if err != nil {
		failure := classifyError(err)
		respondError(w, failure.status, failure.code, failure.message, err)
		return
	}
	if aggregates == nil {
		aggregates = []models.ReviewAggregate{}
	}
	respondSuccess(w, aggregates, start, len(aggregates))
}

// InvalidateCache drops the memoized datasets so the next request re-queries
// the warehouse.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	n := h.loader.Invalidate()
	logging.Ctx(r.Context()).Info().Int("entries", n).Msg("Cache invalidated via API")
	respondSuccess(w, models.CacheInvalidation{EntriesCleared: n}, start, 0)
}

// Index renders the HTML dashboard.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	state, apiErr := parseViewState(r)
	if apiErr != nil {
		metrics.RecordViewComputation("invalid_request")
		h.renderPage(w, http.StatusBadRequest, &pageData{Message: apiErr.Message})
		return
	}

	vm, err := h.computeView(r.Context(), state)
	if err != nil {
		failure := h.failView(r, err)
		h.renderPage(w, failure.status, &pageData{Message: failure.message})
		return
	}

	h.renderPage(w, http.StatusOK, newPageData(vm))
}

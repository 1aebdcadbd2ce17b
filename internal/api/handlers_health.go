// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/covidash/internal/logging"
	"github.com/tomtom215/covidash/internal/models"
)

// HealthLive reports that the process is up, without touching the warehouse.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:  "alive",
			Version: h.opts.Version,
			Uptime:  time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady returns 200 when the warehouse answers a ping and 503
// otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	reachable := false
	if h.warehouse != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.opts.PingTimeout)
		err := h.warehouse.Ping(ctx)
		cancel()
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Warehouse ping failed")
		}
		reachable = err == nil
	}

	statusCode := http.StatusOK
	status := "ready"
	if !reachable {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: models.HealthStatus{
			Status:             status,
			Version:            h.opts.Version,
			WarehouseDriver:    h.opts.WarehouseDriver,
			WarehouseReachable: reachable,
			Uptime:             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

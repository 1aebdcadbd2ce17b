// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/tomtom215/covidash/internal/dashboard"
	"github.com/tomtom215/covidash/internal/logging"
	"github.com/tomtom215/covidash/internal/models"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// pageData is the template input. View is nil when Message explains why
// there is nothing to draw.
type pageData struct {
	Title              string
	RawCasesLabel      string
	RawReviewsLabel    string
	RangeLabel         string
	EmptySelectionText string
	Message            string
	View               *dashboard.ViewModel
	Slider             rangeSlider
}

// rangeSlider positions the two timeframe handles as day offsets from the
// first case date.
type rangeSlider struct {
	Max  int
	Low  int
	High int
}

func newRangeSlider(bounds, selected models.DateRange) rangeSlider {
	return rangeSlider{
		Max:  daysBetween(bounds.Start, bounds.End),
		Low:  daysBetween(bounds.Start, selected.Start),
		High: daysBetween(bounds.Start, selected.End),
	}
}

func daysBetween(from, to models.Date) int {
	return int(to.Time().Sub(from.Time()) / (24 * time.Hour))
}

func newPageData(vm *dashboard.ViewModel) *pageData {
	return &pageData{View: vm, Slider: newRangeSlider(vm.Bounds, vm.Selected)}
}

func (p *pageData) fillLabels() {
	p.Title = dashboard.PageTitle
	p.RawCasesLabel = dashboard.RawCasesLabel
	p.RawReviewsLabel = dashboard.RawReviewsLabel
	p.RangeLabel = dashboard.RangeSelectorLabel
	p.EmptySelectionText = dashboard.EmptySelectionLabel
}

// renderPage executes the page into a buffer first so a template error
// never leaves a half-written page.
func (h *Handler) renderPage(w http.ResponseWriter, status int, data *pageData) {
	data.fillLabels()

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		logging.Error().Err(err).Msg("Failed to execute dashboard template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Error().Err(err).Msg("Failed to write dashboard page")
	}
}

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

/*
Package dashboard turns loaded datasets and the user's control state into a
view model: the selectable date bounds, the filtered rows and two chart specs.

ComputeView is pure. It performs no I/O and does not modify its inputs, so the
HTTP layer can call it on every request against the memoized datasets.

The bounds of the date selector come from the case dataset only. A review
dataset that extends past the case dates is still filtered by those bounds.
*/
package dashboard

import (
	"errors"

	"github.com/tomtom215/covidash/internal/models"
)

// Page copy.
const (
	PageTitle           = "COVID-19 cases and number of orders per day"
	RawCasesLabel       = "Show raw COVID-19 data"
	RawReviewsLabel     = "Show raw Deliverable review data"
	RangeSelectorLabel  = "Select timeframe"
	NoCaseDataMessage   = "No COVID-19 case data was found for the configured cities and year."
	EmptySelectionLabel = "No data in the selected timeframe."
)

var (
	// ErrNoCaseData means the case dataset is empty, so no date bounds exist.
	ErrNoCaseData = errors.New("no case data available")

	// ErrInvalidRange means the requested start date is after the end date.
	ErrInvalidRange = errors.New("start date is after end date")
)

// State is the user's control state. The zero value is the initial page:
// both raw tables hidden and the full range selected.
type State struct {
	ShowRawCases   bool
	ShowRawReviews bool

	// Range is the requested selection. Nil selects the full bounds. A zero
	// Start or End is replaced by the matching bound.
	Range *models.DateRange
}

// Data is the input to ComputeView.
type Data struct {
	Year    int
	Cases   []models.CaseRecord
	Reviews []models.ReviewAggregate
}

// ViewModel is everything the page renders.
type ViewModel struct {
	Title    string           `json:"title"`
	Year     int              `json:"year"`
	Bounds   models.DateRange `json:"bounds"`
	Selected models.DateRange `json:"selected"`

	ShowRawCases   bool                     `json:"show_raw_cases"`
	ShowRawReviews bool                     `json:"show_raw_reviews"`
	RawCases       []models.CaseRecord      `json:"raw_cases,omitempty"`
	RawReviews     []models.ReviewAggregate `json:"raw_reviews,omitempty"`

	FilteredCases   []models.CaseRecord      `json:"filtered_cases"`
	FilteredReviews []models.ReviewAggregate `json:"filtered_reviews"`
	CasesEmpty      bool                     `json:"cases_empty"`
	ReviewsEmpty    bool                     `json:"reviews_empty"`

	CasesChart  Chart `json:"cases_chart"`
	OrdersChart Chart `json:"orders_chart"`
}

// ComputeView derives the view for state from data.
func ComputeView(state State, data Data) (*ViewModel, error) {
	bounds, err := CaseBounds(data.Cases)
	if err != nil {
		return nil, err
	}

	selected, err := SelectRange(state.Range, bounds)
	if err != nil {
		return nil, err
	}

	cases := FilterCases(data.Cases, selected)
	reviews := FilterReviews(data.Reviews, selected)

	vm := &ViewModel{
		Title:           PageTitle,
		Year:            data.Year,
		Bounds:          bounds,
		Selected:        selected,
		ShowRawCases:    state.ShowRawCases,
		ShowRawReviews:  state.ShowRawReviews,
		FilteredCases:   cases,
		FilteredReviews: reviews,
		CasesEmpty:      len(cases) == 0,
		ReviewsEmpty:    len(reviews) == 0,
		CasesChart:      casesChart(data.Year, cases, selected),
		OrdersChart:     ordersChart(data.Year, reviews, selected),
	}
	if state.ShowRawCases {
		vm.RawCases = data.Cases
	}
	if state.ShowRawReviews {
		vm.RawReviews = data.Reviews
	}
	return vm, nil
}

// CaseBounds returns [earliest, latest] case date.
func CaseBounds(cases []models.CaseRecord) (models.DateRange, error) {
	if len(cases) == 0 {
		return models.DateRange{}, ErrNoCaseData
	}
	bounds := models.DateRange{Start: cases[0].Date, End: cases[0].Date}
	for _, c := range cases[1:] {
		if c.Date.Before(bounds.Start) {
			bounds.Start = c.Date
		}
		if c.Date.After(bounds.End) {
			bounds.End = c.Date
		}
	}
	return bounds, nil
}

// SelectRange resolves a requested range against bounds. Missing ends take
// the bound, and the result is clamped into bounds.
func SelectRange(requested *models.DateRange, bounds models.DateRange) (models.DateRange, error) {
	if requested == nil {
		return bounds, nil
	}
	r := *requested
	if r.Start.IsZero() {
		r.Start = bounds.Start
	}
	if r.End.IsZero() {
		r.End = bounds.End
	}
	if !r.Valid() {
		return models.DateRange{}, ErrInvalidRange
	}
	return r.Clamp(bounds), nil
}

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package dashboard

import "github.com/tomtom215/covidash/internal/models"

// FilterCases returns the records dated within r, inclusive, in input order.
// The result is never nil.
func FilterCases(records []models.CaseRecord, r models.DateRange) []models.CaseRecord {
	out := make([]models.CaseRecord, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterReviews returns the aggregates dated within r, inclusive, in input
// order. The result is never nil.
func FilterReviews(aggregates []models.ReviewAggregate, r models.DateRange) []models.ReviewAggregate {
	out := make([]models.ReviewAggregate, 0, len(aggregates))
	for _, agg := range aggregates {
		if r.Contains(agg.Date) {
			out = append(out, agg)
		}
	}
	return out
}

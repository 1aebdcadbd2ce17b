// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

// Package models defines the records loaded from the warehouse and the JSON
// envelope used by the HTTP API.
package models

import "slices"

// CaseRecord is one municipality's reported COVID-19 totals for one day.
// Sequences are sorted by (Municipality, Date) with no duplicate pairs.
type CaseRecord struct {
	Municipality  string `json:"municipality"`
	Date          Date   `json:"date"`
	TotalReported int64  `json:"total_reported"`
	Deceased      int64  `json:"deceased"`
}

// ReviewAggregate is the review activity for one city on one day.
// ReviewCount is at least 1; days without reviews have no row.
// An average over only NULL ratings is reported as 0.
type ReviewAggregate struct {
	City              string  `json:"city"`
	Date              Date    `json:"date"`
	ReviewCount       int64   `json:"review_count"`
	AvgDeliveryRating float64 `json:"avg_delivery_rating"`
	AvgFoodRating     float64 `json:"avg_food_rating"`
}

// DatasetScope is the parameter set shared by both warehouse queries.
type DatasetScope struct {
	Cities          []string `json:"cities"`
	Year            int      `json:"year"`
	CaseTable       string   `json:"case_table"`
	ReviewTable     string   `json:"review_table"`
	RestaurantTable string   `json:"restaurant_table"`
}

// HasCity reports whether city is in scope.
func (s DatasetScope) HasCity(city string) bool {
	return slices.Contains(s.Cities, city)
}

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package dashboard

import (
	"fmt"
	"strconv"

	"github.com/tomtom215/covidash/internal/models"
)

// TickModePeriod centers each tick label under the whole month.
const TickModePeriod = "period"

// OrdersNote is shown under the orders chart.
const OrdersNote = "Orders are approximated by the number of reviews per city per day; " +
	"orders without a review are not counted."

// Chart is a line chart spec handed to the browser's plotting library.
type Chart struct {
	Title       string   `json:"title"`
	XLabel      string   `json:"x_label"`
	YLabel      string   `json:"y_label"`
	LegendTitle string   `json:"legend_title"`
	Series      []Series `json:"series"`
	Ticks       []Tick   `json:"ticks"`
	TickMode    string   `json:"tick_mode"`
	Note        string   `json:"note,omitempty"`
}

// Series is one line, one per location.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Point is one (date, value) sample.
type Point struct {
	Date  models.Date `json:"date"`
	Value float64     `json:"value"`
}

// Tick is an x-axis tick at the first day of a month.
type Tick struct {
	Date  models.Date `json:"date"`
	Label string      `json:"label"`
}

func casesChart(year int, cases []models.CaseRecord, selected models.DateRange) Chart {
	chart := Chart{
		Title:       fmt.Sprintf("COVID-19 cases per day (%d)", year),
		XLabel:      strconv.Itoa(year),
		YLabel:      "Cases",
		LegendTitle: "City",
		Series:      []Series{},
		Ticks:       MonthlyTicks(selected),
		TickMode:    TickModePeriod,
	}
	for _, c := range cases {
		chart.Series = appendPoint(chart.Series, c.Municipality, Point{Date: c.Date, Value: float64(c.TotalReported)})
	}
	return chart
}

func ordersChart(year int, reviews []models.ReviewAggregate, selected models.DateRange) Chart {
	chart := Chart{
		Title:       fmt.Sprintf("Number of orders per day (%d)", year),
		XLabel:      strconv.Itoa(year),
		YLabel:      "Orders",
		LegendTitle: "City",
		Series:      []Series{},
		Ticks:       MonthlyTicks(selected),
		TickMode:    TickModePeriod,
		Note:        OrdersNote,
	}
	for _, r := range reviews {
		chart.Series = appendPoint(chart.Series, r.City, Point{Date: r.Date, Value: float64(r.ReviewCount)})
	}
	return chart
}

// appendPoint adds p to the series named name, creating it on first use.
// Input is grouped by location, so the last series is checked first.
func appendPoint(series []Series, name string, p Point) []Series {
	if n := len(series); n > 0 && series[n-1].Name == name {
		series[n-1].Points = append(series[n-1].Points, p)
		return series
	}
	for i := range series {
		if series[i].Name == name {
			series[i].Points = append(series[i].Points, p)
			return series
		}
	}
	return append(series, Series{Name: name, Points: []Point{p}})
}

// MonthlyTicks returns one tick at the first day of every month that
// overlaps r, labeled with the abbreviated month name.
func MonthlyTicks(r models.DateRange) []Tick {
	if r.Start.IsZero() || !r.Valid() {
		return []Tick{}
	}
	var ticks []Tick
	for m := r.Start.FirstOfMonth(); !m.After(r.End); m = models.NewDate(m.Year(), m.Month()+1, 1) {
		ticks = append(ticks, Tick{Date: m, Label: m.Month().String()[:3]})
	}
	return ticks
}

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package dashboard

import (
	"testing"
	"time"

	"github.com/tomtom215/covidash/internal/models"
)

func TestMonthlyTicks(t *testing.T) {
	tests := []struct {
		name       string
		r          models.DateRange
		wantLabels []string
		wantFirst  string
	}{
		{
			name:       "full year",
			r:          models.DateRange{Start: day(time.January, 1), End: day(time.December, 31)},
			wantLabels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
			wantFirst:  "2022-01-01",
		},
		{
			name:       "mid-month start includes its month",
			r:          models.DateRange{Start: day(time.March, 15), End: day(time.May, 2)},
			wantLabels: []string{"Mar", "Apr", "May"},
			wantFirst:  "2022-03-01",
		},
		{
			name:       "single day",
			r:          models.DateRange{Start: day(time.July, 4), End: day(time.July, 4)},
			wantLabels: []string{"Jul"},
			wantFirst:  "2022-07-01",
		},
		{
			name:       "across year end",
			r:          models.DateRange{Start: day(time.December, 20), End: models.NewDate(2023, time.January, 5)},
			wantLabels: []string{"Dec", "Jan"},
			wantFirst:  "2022-12-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticks := MonthlyTicks(tt.r)
			if len(ticks) != len(tt.wantLabels) {
				t.Fatalf("got %d ticks, want %d", len(ticks), len(tt.wantLabels))
			}
			for i, tick := range ticks {
				if tick.Label != tt.wantLabels[i] {
					t.Errorf("tick %d label = %q, want %q", i, tick.Label, tt.wantLabels[i])
				}
			}
			if got := ticks[0].Date.String(); got != tt.wantFirst {
				t.Errorf("first tick = %s, want %s", got, tt.wantFirst)
			}
		})
	}
}

func TestMonthlyTicks_Empty(t *testing.T) {
	if ticks := MonthlyTicks(models.DateRange{}); len(ticks) != 0 {
		t.Errorf("zero range produced %d ticks", len(ticks))
	}
}

func TestCharts(t *testing.T) {
	vm, err := ComputeView(State{}, sampleData())
	if err != nil {
		t.Fatalf("ComputeView() error = %v", err)
	}

	cases := vm.CasesChart
	if cases.Title != "COVID-19 cases per day (2022)" {
		t.Errorf("cases title = %q", cases.Title)
	}
	if cases.XLabel != "2022" || cases.YLabel != "Cases" || cases.LegendTitle != "City" {
		t.Errorf("cases labels = %q %q %q", cases.XLabel, cases.YLabel, cases.LegendTitle)
	}
	if cases.TickMode != TickModePeriod {
		t.Errorf("tick mode = %q", cases.TickMode)
	}
	if len(cases.Series) != 2 || cases.Series[0].Name != "Amsterdam" || cases.Series[1].Name != "Rotterdam" {
		t.Fatalf("cases series = %+v", cases.Series)
	}
	if got := cases.Series[0].Points; len(got) != 2 || got[0].Value != 10 || got[1].Value != 12 {
		t.Errorf("Amsterdam points = %+v", got)
	}

	orders := vm.OrdersChart
	if orders.Title != "Number of orders per day (2022)" || orders.YLabel != "Orders" {
		t.Errorf("orders chart = %q / %q", orders.Title, orders.YLabel)
	}
	if orders.Note == "" {
		t.Error("orders chart missing review/order caveat")
	}
	if len(orders.Series) != 2 || orders.Series[0].Points[0].Value != 2 {
		t.Errorf("orders series = %+v", orders.Series)
	}
}

func TestAppendPoint_NonContiguousLocation(t *testing.T) {
	var series []Series
	series = appendPoint(series, "Amsterdam", Point{Value: 1})
	series = appendPoint(series, "Rotterdam", Point{Value: 2})
	series = appendPoint(series, "Amsterdam", Point{Value: 3})

	if len(series) != 2 {
		t.Fatalf("got %d series, want 2", len(series))
	}
	if len(series[0].Points) != 2 || series[0].Points[1].Value != 3 {
		t.Errorf("Amsterdam = %+v", series[0])
	}
}

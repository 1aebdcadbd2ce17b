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

func yearOfCases() []models.CaseRecord {
	var out []models.CaseRecord
	for _, city := range []string{"Amsterdam", "Groningen"} {
		for d := models.NewDate(2022, time.January, 1); d.Year() == 2022; d = d.AddDays(1) {
			out = append(out, models.CaseRecord{Municipality: city, Date: d, TotalReported: 1})
		}
	}
	return out
}

func TestFilterCases_ExactlyInclusiveRange(t *testing.T) {
	records := yearOfCases()
	r := models.DateRange{Start: day(time.March, 10), End: day(time.April, 9)}

	got := FilterCases(records, r)

	want := 0
	for _, rec := range records {
		if !rec.Date.Before(r.Start) && !rec.Date.After(r.End) {
			want++
		}
	}
	if len(got) != want {
		t.Fatalf("FilterCases() returned %d rows, want %d", len(got), want)
	}
	if want != 2*31 {
		t.Fatalf("fixture sanity: want %d rows, expected 62", want)
	}
	for _, rec := range got {
		if !r.Contains(rec.Date) {
			t.Errorf("row dated %s outside %s..%s", rec.Date, r.Start, r.End)
		}
	}
}

func TestFilterCases_SingleDay(t *testing.T) {
	d := day(time.July, 15)
	got := FilterCases(yearOfCases(), models.DateRange{Start: d, End: d})
	if len(got) != 2 {
		t.Fatalf("got %d rows, want one per city", len(got))
	}
	for _, rec := range got {
		if !rec.Date.Equal(d) {
			t.Errorf("row dated %s, want %s", rec.Date, d)
		}
	}
}

func TestFilterReviews_SingleDay(t *testing.T) {
	d := day(time.January, 1)
	aggs := []models.ReviewAggregate{
		{City: "Amsterdam", Date: d, ReviewCount: 2},
		{City: "Amsterdam", Date: day(time.January, 2), ReviewCount: 1},
		{City: "Rotterdam", Date: d, ReviewCount: 1},
	}

	got := FilterReviews(aggs, models.DateRange{Start: d, End: d})
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].City != "Amsterdam" || got[1].City != "Rotterdam" {
		t.Errorf("order not preserved: %+v", got)
	}
}

func TestFilter_EmptyInputNonNil(t *testing.T) {
	r := models.DateRange{Start: day(time.January, 1), End: day(time.January, 31)}
	if got := FilterCases(nil, r); got == nil || len(got) != 0 {
		t.Errorf("FilterCases(nil) = %#v, want empty non-nil", got)
	}
	if got := FilterReviews(nil, r); got == nil || len(got) != 0 {
		t.Errorf("FilterReviews(nil) = %#v, want empty non-nil", got)
	}
}

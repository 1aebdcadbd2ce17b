// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	beforeRows := testutil.ToFloat64(DBRowsReturned.WithLabelValues("case_totals_test"))

	RecordDBQuery("case_totals_test", "covid.municipality_totals_daily", 10*time.Millisecond, 3, nil)

	if got := testutil.ToFloat64(DBRowsReturned.WithLabelValues("case_totals_test")) - beforeRows; got != 3 {
		t.Errorf("rows delta = %v, want 3", got)
	}
}

func TestRecordDBQuery_ErrorTypes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", fmt.Errorf("failed: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"other", errors.New("relation does not exist"), "query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := DBQueryErrors.WithLabelValues("err_test", "t", tt.want)
			before := testutil.ToFloat64(counter)

			RecordDBQuery("err_test", "t", time.Millisecond, 0, tt.err)

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("error counter delta = %v, want 1", got)
			}
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("lookup_test"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("lookup_test"))

	RecordCacheLookup("lookup_test", false)
	RecordCacheLookup("lookup_test", true)
	RecordCacheLookup("lookup_test", true)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("lookup_test")) - hits; got != 2 {
		t.Errorf("hits delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("lookup_test")) - misses; got != 1 {
		t.Errorf("misses delta = %v, want 1", got)
	}
}

func TestRecordCacheInvalidation(t *testing.T) {
	before := testutil.ToFloat64(CacheInvalidations)
	CacheSize.Set(2)

	RecordCacheInvalidation()

	if got := testutil.ToFloat64(CacheInvalidations) - before; got != 1 {
		t.Errorf("invalidations delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CacheSize); got != 0 {
		t.Errorf("cache size = %v, want 0", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)

	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active requests delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/view", "200"))

	RecordAPIRequest("GET", "/api/v1/view", "200", 5*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/view", "200")) - before; got != 1 {
		t.Errorf("requests delta = %v, want 1", got)
	}
}

func TestTrackUptime_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		TrackUptime(ctx, time.Now().Add(-time.Minute), time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TrackUptime did not return after cancel")
	}
	if testutil.ToFloat64(AppUptime) < 60 {
		t.Errorf("uptime = %v, want >= 60", testutil.ToFloat64(AppUptime))
	}
}

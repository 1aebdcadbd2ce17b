// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/covidash/internal/cache"
	"github.com/tomtom215/covidash/internal/models"
)

// countingSource is a Source that counts calls and can be made to fail or
// block.
type countingSource struct {
	fingerprint string
	cases       []models.CaseRecord
	reviews     []models.ReviewAggregate

	caseCalls   atomic.Int32
	reviewCalls atomic.Int32

	mu      sync.Mutex
	caseErr error
	gate    chan struct{}
	scopes  []models.DatasetScope
}

func (s *countingSource) Fingerprint() string { return s.fingerprint }

func (s *countingSource) CaseTotals(ctx context.Context, scope models.DatasetScope) ([]models.CaseRecord, error) {
	s.caseCalls.Add(1)
	s.mu.Lock()
	err, gate := s.caseErr, s.gate
	s.scopes = append(s.scopes, scope)
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return s.cases, nil
}

func (s *countingSource) ReviewAggregates(_ context.Context, _ models.DatasetScope) ([]models.ReviewAggregate, error) {
	s.reviewCalls.Add(1)
	return s.reviews, nil
}

func (s *countingSource) setCaseErr(err error) {
	s.mu.Lock()
	s.caseErr = err
	s.mu.Unlock()
}

func newSource() *countingSource {
	return &countingSource{
		fingerprint: "abc123",
		cases: []models.CaseRecord{
			{Municipality: "Amsterdam", Date: models.NewDate(2022, time.January, 1), TotalReported: 10},
			{Municipality: "Amsterdam", Date: models.NewDate(2022, time.January, 2), TotalReported: 12, Deceased: 1},
			{Municipality: "Rotterdam", Date: models.NewDate(2022, time.January, 1), TotalReported: 5},
		},
		reviews: []models.ReviewAggregate{
			{City: "Amsterdam", Date: models.NewDate(2022, time.January, 1), ReviewCount: 2, AvgDeliveryRating: 3, AvgFoodRating: 4},
		},
	}
}

func testScope() models.DatasetScope {
	return models.DatasetScope{
		Cities:          []string{"Amsterdam", "Rotterdam", "Groningen"},
		Year:            2022,
		CaseTable:       "covid.municipality_totals_daily",
		ReviewTable:     "reviews",
		RestaurantTable: "restaurants",
	}
}

func newTestLoader(t *testing.T, src Source) (*Loader, *cache.Cache) {
	t.Helper()
	c := cache.New(0)
	t.Cleanup(c.Close)
	return NewLoader(src, testScope(), c), c
}

func TestLoader_CasesMemoized(t *testing.T) {
	src := newSource()
	loader, _ := newTestLoader(t, src)
	ctx := context.Background()

	first, err := loader.Cases(ctx)
	if err != nil {
		t.Fatalf("Cases() error = %v", err)
	}
	second, err := loader.Cases(ctx)
	if err != nil {
		t.Fatalf("Cases() error = %v", err)
	}

	if got := src.caseCalls.Load(); got != 1 {
		t.Errorf("source called %d times, want 1", got)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Municipality != second[i].Municipality || !first[i].Date.Equal(second[i].Date) ||
			first[i].TotalReported != second[i].TotalReported {
			t.Errorf("row %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestLoader_ReviewsMemoizedSeparately(t *testing.T) {
	src := newSource()
	loader, c := newTestLoader(t, src)
	ctx := context.Background()

	if _, err := loader.Cases(ctx); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if _, err := loader.Reviews(ctx); err != nil {
			t.Fatal(err)
		}
	}

	if got := src.reviewCalls.Load(); got != 1 {
		t.Errorf("review source called %d times, want 1", got)
	}
	if c.Len() != 2 {
		t.Errorf("cache holds %d entries, want 2", c.Len())
	}
}

func TestLoader_ReturnsCopy(t *testing.T) {
	src := newSource()
	loader, _ := newTestLoader(t, src)
	ctx := context.Background()

	first, err := loader.Cases(ctx)
	if err != nil {
		t.Fatal(err)
	}
	first[0].TotalReported = 9999

	second, err := loader.Cases(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second[0].TotalReported != 10 {
		t.Errorf("cached data was mutated through a returned slice: %d", second[0].TotalReported)
	}
}

func TestLoader_ErrorsNotCached(t *testing.T) {
	src := newSource()
	boom := errors.New("warehouse unavailable")
	src.setCaseErr(boom)
	loader, c := newTestLoader(t, src)
	ctx := context.Background()

	if _, err := loader.Cases(ctx); !errors.Is(err, boom) {
		t.Fatalf("Cases() error = %v, want %v", err, boom)
	}
	if c.Len() != 0 {
		t.Errorf("failed load left %d cache entries", c.Len())
	}

	src.setCaseErr(nil)
	records, err := loader.Cases(ctx)
	if err != nil {
		t.Fatalf("Cases() after recovery error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
	if got := src.caseCalls.Load(); got != 2 {
		t.Errorf("source called %d times, want 2", got)
	}
}

func TestLoader_Invalidate(t *testing.T) {
	src := newSource()
	loader, _ := newTestLoader(t, src)
	ctx := context.Background()

	if _, err := loader.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if n := loader.Invalidate(); n != 2 {
		t.Errorf("Invalidate() = %d, want 2", n)
	}
	if _, err := loader.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if got := src.caseCalls.Load(); got != 2 {
		t.Errorf("case source called %d times, want 2", got)
	}
	if got := src.reviewCalls.Load(); got != 2 {
		t.Errorf("review source called %d times, want 2", got)
	}
}

func TestLoader_LoadStopsOnFirstError(t *testing.T) {
	src := newSource()
	src.setCaseErr(errors.New("no table"))
	loader, _ := newTestLoader(t, src)

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("Load() expected error")
	}
	if got := src.reviewCalls.Load(); got != 0 {
		t.Errorf("reviews queried %d times after case failure", got)
	}
}

func TestLoader_ConcurrentMissesCoalesced(t *testing.T) {
	src := newSource()
	src.gate = make(chan struct{})
	loader, _ := newTestLoader(t, src)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := loader.Cases(ctx)
			errs <- err
		}()
	}

	// Let the first query start before releasing it.
	deadline := time.Now().Add(5 * time.Second)
	for src.caseCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Cases() error = %v", err)
		}
	}
	// Every caller was parked on the gate, so they share far fewer loads
	// than there are callers.
	if got := src.caseCalls.Load(); got < 1 || got >= callers {
		t.Errorf("source called %d times for %d concurrent callers", got, callers)
	}
}

func TestLoader_KeyCoversScopeAndSource(t *testing.T) {
	src := newSource()
	c := cache.New(0)
	t.Cleanup(c.Close)
	ctx := context.Background()

	a := NewLoader(src, testScope(), c)
	other := testScope()
	other.Year = 2021
	b := NewLoader(src, other, c)

	otherSrc := newSource()
	otherSrc.fingerprint = "def456"
	d := NewLoader(otherSrc, testScope(), c)

	for _, l := range []*Loader{a, b, d} {
		if _, err := l.Cases(ctx); err != nil {
			t.Fatal(err)
		}
	}

	if got := src.caseCalls.Load(); got != 2 {
		t.Errorf("shared source called %d times, want 2 (one per scope)", got)
	}
	if got := otherSrc.caseCalls.Load(); got != 1 {
		t.Errorf("second source called %d times, want 1", got)
	}
	if c.Len() != 3 {
		t.Errorf("cache holds %d entries, want 3", c.Len())
	}
}

func TestLoader_ScopeIsCopied(t *testing.T) {
	scope := testScope()
	c := cache.New(0)
	t.Cleanup(c.Close)
	loader := NewLoader(newSource(), scope, c)

	scope.Cities[0] = "Utrecht"
	got := loader.Scope()
	if got.Cities[0] != "Amsterdam" {
		t.Errorf("loader scope changed through caller slice: %v", got.Cities)
	}
	got.Cities[1] = "Leiden"
	if loader.Scope().Cities[1] != "Rotterdam" {
		t.Error("loader scope changed through Scope() result")
	}
}

func TestLoader_TTLExpiry(t *testing.T) {
	src := newSource()
	c := cache.New(50 * time.Millisecond)
	t.Cleanup(c.Close)
	loader := NewLoader(src, testScope(), c)
	ctx := context.Background()

	if _, err := loader.Cases(ctx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(80 * time.Millisecond)
	if _, err := loader.Cases(ctx); err != nil {
		t.Fatal(err)
	}
	if got := src.caseCalls.Load(); got != 2 {
		t.Errorf("source called %d times after expiry, want 2", got)
	}
}

// waitForCaseCalls polls until src has seen n case queries.
func waitForCaseCalls(t *testing.T, src *countingSource, n int32) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for src.caseCalls.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("source saw %d case queries, want %d", src.caseCalls.Load(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoader_CanceledCallerDoesNotFailSharedLoad(t *testing.T) {
	src := newSource()
	src.gate = make(chan struct{})
	loader, _ := newTestLoader(t, src)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := loader.Cases(firstCtx)
		firstErr <- err
	}()
	waitForCaseCalls(t, src, 1)

	type result struct {
		records []models.CaseRecord
		err     error
	}
	second := make(chan result, 1)
	go func() {
		records, err := loader.Cases(context.Background())
		second <- result{records, err}
	}()
	// Give the second caller time to join the in-flight query.
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("canceled caller error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("canceled caller kept waiting")
	}

	close(src.gate)
	select {
	case res := <-second:
		if res.err != nil {
			t.Fatalf("second caller error = %v", res.err)
		}
		if len(res.records) != 3 {
			t.Errorf("second caller got %d records, want 3", len(res.records))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second caller never returned")
	}

	if got := src.caseCalls.Load(); got != 1 {
		t.Errorf("source called %d times, want 1", got)
	}
}

func TestLoader_InvalidateDuringLoadDiscardsResult(t *testing.T) {
	src := newSource()
	src.gate = make(chan struct{})
	loader, c := newTestLoader(t, src)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := loader.Cases(ctx)
		done <- err
	}()
	waitForCaseCalls(t, src, 1)

	loader.Invalidate()
	close(src.gate)
	if err := <-done; err != nil {
		t.Fatalf("in-flight Cases() error = %v", err)
	}

	if c.Len() != 0 {
		t.Errorf("cache holds %d entries after invalidation, want 0", c.Len())
	}
	if _, err := loader.Cases(ctx); err != nil {
		t.Fatal(err)
	}
	if got := src.caseCalls.Load(); got != 2 {
		t.Errorf("source called %d times, want 2 (fresh query after invalidation)", got)
	}
	if c.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", c.Len())
	}
}

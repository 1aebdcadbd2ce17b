// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/covidash/internal/logging"
	"github.com/tomtom215/covidash/internal/metrics"
	"github.com/tomtom215/covidash/internal/models"
)

// CaseTotals returns reported cases and deaths per municipality per day for
// the scope's cities and year, sorted by (municipality, date). NULL counts
// are read as 0.
func (db *DB) CaseTotals(ctx context.Context, scope models.DatasetScope) ([]models.CaseRecord, error) {
	query, args, err := buildCaseTotalsQuery(scope)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	records, err := db.scanCaseTotals(ctx, query, args)
	metrics.RecordDBQuery("case_totals", scope.CaseTable, time.Since(start), len(records), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query case totals: %w", err)
	}

	logging.Ctx(ctx).Debug().
		Int("rows", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Loaded case totals")
	return records, nil
}

func buildCaseTotalsQuery(scope models.DatasetScope) (string, []any, error) {
	if err := checkIdentifier(scope.CaseTable); err != nil {
		return "", nil, err
	}
	where, args, err := scopeFilter(scope, "mtd.municipality_name", "mtd.date_of_publication")
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf(`
	SELECT
		mtd.municipality_name,
		CAST(mtd.date_of_publication AS DATE) AS publication_date,
		CAST(COALESCE(mtd.total_reported, 0) AS BIGINT) AS total_reported,
		CAST(COALESCE(mtd.deceased, 0) AS BIGINT) AS deceased
	FROM %s mtd
	WHERE %s
	ORDER BY mtd.municipality_name, publication_date`, scope.CaseTable, where)
	return query, args, nil
}

func (db *DB) scanCaseTotals(ctx context.Context, query string, args []any) ([]models.CaseRecord, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.closedErr(err)
	}
	defer closeWithLog(rows, "case totals rows")

	var records []models.CaseRecord
	for rows.Next() {
		var rec models.CaseRecord
		var day time.Time
		if err := rows.Scan(&rec.Municipality, &day, &rec.TotalReported, &rec.Deceased); err != nil {
			return nil, fmt.Errorf("failed to scan case row: %w", err)
		}
		rec.Date = models.DateOf(day)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, db.closedErr(err)
	}
	return records, nil
}

// ReviewAggregates returns, per city per day, the number of reviews and the
// average delivery and food ratings for restaurants in the scope's cities
// during the scope's year, sorted by (city, date). Days without reviews are
// absent.
func (db *DB) ReviewAggregates(ctx context.Context, scope models.DatasetScope) ([]models.ReviewAggregate, error) {
	query, args, err := buildReviewAggregatesQuery(scope)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	aggregates, err := db.scanReviewAggregates(ctx, query, args)
	metrics.RecordDBQuery("review_aggregates", scope.ReviewTable, time.Since(start), len(aggregates), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query review aggregates: %w", err)
	}

	logging.Ctx(ctx).Debug().
		Int("rows", len(aggregates)).
		Dur("duration", time.Since(start)).
		Msg("Loaded review aggregates")
	return aggregates, nil
}

func buildReviewAggregatesQuery(scope models.DatasetScope) (string, []any, error) {
	if err := checkIdentifier(scope.ReviewTable); err != nil {
		return "", nil, err
	}
	if err := checkIdentifier(scope.RestaurantTable); err != nil {
		return "", nil, err
	}
	where, args, err := scopeFilter(scope, "rest.location_city", `r."datetime"`)
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf(`
	SELECT
		rest.location_city,
		CAST(r."datetime" AS DATE) AS review_date,
		COUNT(*) AS review_count,
		CAST(COALESCE(AVG(r.rating_delivery), 0) AS DOUBLE PRECISION) AS rating_delivery,
		CAST(COALESCE(AVG(r.rating_food), 0) AS DOUBLE PRECISION) AS rating_food
	FROM %s r
	JOIN %s rest USING (restaurant_id)
	WHERE %s
	GROUP BY rest.location_city, CAST(r."datetime" AS DATE)
	ORDER BY rest.location_city, review_date`, scope.ReviewTable, scope.RestaurantTable, where)
	return query, args, nil
}

func (db *DB) scanReviewAggregates(ctx context.Context, query string, args []any) ([]models.ReviewAggregate, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.closedErr(err)
	}
	defer closeWithLog(rows, "review aggregate rows")

	var aggregates []models.ReviewAggregate
	for rows.Next() {
		var agg models.ReviewAggregate
		var day time.Time
		if err := rows.Scan(&agg.City, &day, &agg.ReviewCount, &agg.AvgDeliveryRating, &agg.AvgFoodRating); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		agg.Date = models.DateOf(day)
		aggregates = append(aggregates, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, db.closedErr(err)
	}
	return aggregates, nil
}

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

/*
Package api serves the dashboard page and its JSON endpoints over a chi router.

Routes:

	GET  /                          HTML dashboard (Plotly.js charts)
	GET  /api/v1/view               view model for the given controls
	GET  /api/v1/cases              unfiltered case totals
	GET  /api/v1/reviews            unfiltered review aggregates
	POST /api/v1/cache/invalidate   drop memoized datasets
	GET  /api/v1/health/live        liveness
	GET  /api/v1/health/ready       readiness (warehouse ping)
	GET  /metrics                   Prometheus exposition

The page and /api/v1/view accept the same query parameters:

	raw_cases=true|false     include the unfiltered case table
	raw_reviews=true|false   include the unfiltered review table
	start=YYYY-MM-DD         first selected day (inclusive)
	end=YYYY-MM-DD           last selected day (inclusive)

JSON responses use models.APIResponse. Errors carry a code:

	VALIDATION_ERROR     400  malformed parameter or start after end
	NO_DATA              404  the case dataset is empty
	RATE_LIMIT_EXCEEDED  429
	DATABASE_ERROR       500  a warehouse query failed
	INTERNAL_ERROR       500
*/
package api

// Covidash - COVID-19 Cases and Food Delivery Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covidash

package database

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tomtom215/covidash/internal/models"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// checkIdentifier rejects anything but table or schema.table. Table names are
// interpolated, so this is the only guard between config and SQL text.
func checkIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// buildInClause returns numbered placeholders ($start, $start+1, ...) and
// their arguments. Both PostgreSQL and DuckDB accept $n.
//
//	placeholders, args := buildInClause([]string{"Amsterdam", "Rotterdam"}, 1)
//	// placeholders = "$1, $2"
func buildInClause(items []string, start int) (string, []any) {
	placeholders := make([]string, len(items))
	args := make([]any, len(items))
	for i, item := range items {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
		args[i] = item
	}
	return strings.Join(placeholders, ", "), args
}

// scopeFilter builds "<locationCol> IN (...) AND <dateCol> in [year, year+1)".
// The half-open date range is equivalent to extracting the year but lets an
// index on the date column be used.
func scopeFilter(scope models.DatasetScope, locationCol, dateCol string) (string, []any, error) {
	if len(scope.Cities) == 0 {
		return "", nil, ErrEmptyScope
	}

	inClause, args := buildInClause(scope.Cities, 1)
	n := len(args)
	start, end := models.YearBounds(scope.Year)
	args = append(args, start.String(), end.String())

	where := fmt.Sprintf("%s IN (%s) AND %s >= CAST($%d AS DATE) AND %s < CAST($%d AS DATE)",
		locationCol, inClause, dateCol, n+1, dateCol, n+2)
	return where, args, nil
}

// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/novelist-app/novelist/internal/metrics"
)

// SQLProvider reads the shared corpus from a DuckDB table:
//
//	CREATE TABLE ratings (user_id BIGINT, book_id BIGINT, rating DOUBLE)
type SQLProvider struct {
	db    *sql.DB
	table string
}

// NewSQLProvider creates a provider reading from the given table. An
// empty table name selects the default "ratings".
func NewSQLProvider(db *sql.DB, table string) *SQLProvider {
	if table == "" {
		table = "ratings"
	}
	return &SQLProvider{db: db, table: table}
}

// Ratings implements Provider.
func (p *SQLProvider) Ratings(ctx context.Context) ([]Rating, error) {
	start := time.Now()
	//nolint:gosec // table name is configuration, not request input
	query := fmt.Sprintf("SELECT user_id, book_id, rating FROM %s", p.table)
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		metrics.ObserveProviderQuery("corpus", "duckdb", time.Since(start), err)
		return nil, fmt.Errorf("query corpus: %w", err)
	}
	defer rows.Close()

	var ratings []Rating
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.UserID, &r.BookID, &r.Score); err != nil {
			metrics.ObserveProviderQuery("corpus", "duckdb", time.Since(start), err)
			return nil, fmt.Errorf("scan corpus row: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		metrics.ObserveProviderQuery("corpus", "duckdb", time.Since(start), err)
		return nil, fmt.Errorf("iterate corpus rows: %w", err)
	}
	metrics.ObserveProviderQuery("corpus", "duckdb", time.Since(start), nil)
	return ratings, nil
}

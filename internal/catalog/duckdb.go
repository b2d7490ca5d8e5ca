// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/novelist-app/novelist/internal/metrics"
)

// queryBatchSize bounds the size of a single IN (...) lookup so that
// very large library exports do not produce unbounded SQL statements.
const queryBatchSize = 500

// SQLProvider serves identifier mappings from a DuckDB table. The table
// carries the same two columns as the CSV reference file:
//
//	CREATE TABLE book_id_map (book_id_csv BIGINT, book_id BIGINT)
type SQLProvider struct {
	db    *sql.DB
	table string
}

// NewSQLProvider creates a provider reading from the given table. An
// empty table name selects the default "book_id_map".
func NewSQLProvider(db *sql.DB, table string) *SQLProvider {
	if table == "" {
		table = "book_id_map"
	}
	return &SQLProvider{db: db, table: table}
}

// Mappings implements ReferenceProvider. Lookups are issued in batches;
// the IN list is rendered from int64 values only, so no user-controlled
// text ever reaches the statement.
func (p *SQLProvider) Mappings(ctx context.Context, externalIDs []int64) ([]Mapping, error) {
	start := time.Now()
	out := make([]Mapping, 0, len(externalIDs))
	for offset := 0; offset < len(externalIDs); offset += queryBatchSize {
		end := offset + queryBatchSize
		if end > len(externalIDs) {
			end = len(externalIDs)
		}
		batch, err := p.queryBatch(ctx, externalIDs[offset:end])
		if err != nil {
			metrics.ObserveProviderQuery("catalog", "duckdb", time.Since(start), err)
			return nil, err
		}
		out = append(out, batch...)
	}
	metrics.ObserveProviderQuery("catalog", "duckdb", time.Since(start), nil)
	return out, nil
}

func (p *SQLProvider) queryBatch(ctx context.Context, ids []int64) ([]Mapping, error) {
	var in strings.Builder
	for i, id := range ids {
		if i > 0 {
			in.WriteByte(',')
		}
		in.WriteString(strconv.FormatInt(id, 10))
	}

	//nolint:gosec // table name is configuration, IN list is integers only
	query := fmt.Sprintf(
		"SELECT book_id, book_id_csv FROM %s WHERE book_id IN (%s)",
		p.table, in.String(),
	)
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query identifier map: %w", err)
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ExternalID, &m.InternalID); err != nil {
			return nil, fmt.Errorf("scan identifier map row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identifier map rows: %w", err)
	}
	return out, nil
}

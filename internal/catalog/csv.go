// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/novelist-app/novelist/internal/metrics"
)

// CSVProvider serves identifier mappings from a local reference table.
// The table is read once at construction and held in memory; the file
// layout is two integer columns, internal id first:
//
//	book_id_csv,book_id
//	1,2767052
//	2,3
//
// which mirrors the column order of the corpus distribution this table
// ships alongside.
type CSVProvider struct {
	byExternal map[int64]int64
}

// NewCSVProvider loads the reference table at path.
func NewCSVProvider(path string) (*CSVProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identifier map: %w", err)
	}
	defer f.Close()

	p, err := readCSVMappings(f)
	if err != nil {
		return nil, fmt.Errorf("read identifier map %s: %w", path, err)
	}
	return p, nil
}

func readCSVMappings(r io.Reader) (*CSVProvider, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header[0] != "book_id_csv" || header[1] != "book_id" {
		return nil, fmt.Errorf("unexpected header %q, want book_id_csv,book_id", header)
	}

	byExternal := make(map[int64]int64)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		internal, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad internal id %q", line, rec[0])
		}
		external, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad external id %q", line, rec[1])
		}
		byExternal[external] = internal
	}
	return &CSVProvider{byExternal: byExternal}, nil
}

// Len reports the number of loaded mappings.
func (p *CSVProvider) Len() int { return len(p.byExternal) }

// Mappings implements ReferenceProvider.
func (p *CSVProvider) Mappings(ctx context.Context, externalIDs []int64) ([]Mapping, error) {
	start := time.Now()
	out := make([]Mapping, 0, len(externalIDs))
	for _, id := range externalIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if internal, ok := p.byExternal[id]; ok {
			out = append(out, Mapping{ExternalID: id, InternalID: internal})
		}
	}
	metrics.ObserveProviderQuery("catalog", "csv", time.Since(start), nil)
	return out, nil
}

// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package corpus

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

// CSVProvider reads the shared corpus from a three-column file:
//
//	user_id,book_id,rating
//	1,258,5
//	2,4081,4
type CSVProvider struct {
	path string
}

// NewCSVProvider creates a provider for the corpus file at path. The
// file is read on each Ratings call; callers load once and keep the
// result.
func NewCSVProvider(path string) *CSVProvider {
	return &CSVProvider{path: path}
}

// Ratings implements Provider.
func (p *CSVProvider) Ratings(ctx context.Context) ([]Rating, error) {
	start := time.Now()
	f, err := os.Open(p.path)
	if err != nil {
		metrics.ObserveProviderQuery("corpus", "csv", time.Since(start), err)
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	ratings, err := readCSVRatings(ctx, f)
	metrics.ObserveProviderQuery("corpus", "csv", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", p.path, err)
	}
	return ratings, nil
}

func readCSVRatings(ctx context.Context, r io.Reader) ([]Rating, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header[0] != "user_id" || header[1] != "book_id" || header[2] != "rating" {
		return nil, fmt.Errorf("unexpected header %q, want user_id,book_id,rating", header)
	}

	var ratings []Rating
	for line := 2; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		userID, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad user id %q", line, rec[0])
		}
		bookID, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad book id %q", line, rec[1])
		}
		score, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad rating %q", line, rec[2])
		}
		ratings = append(ratings, Rating{UserID: userID, BookID: bookID, Score: score})
	}
	return ratings, nil
}

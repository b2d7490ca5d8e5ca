// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/novelist-app/novelist/internal/metrics"
)

// ErrInvalidExport marks malformed library exports: wrong columns, bad
// ids, out-of-range ratings. It is distinct from the business errors
// raised later for exports that parse fine but hold too little data.
var ErrInvalidExport = errors.New("invalid library export")

// Column names as written by the Goodreads export. Lookup is
// case-sensitive; exports have carried these exact headers for years.
const (
	colBookID = "Book Id"
	colTitle  = "Title"
	colAuthor = "Author"
	colRating = "My Rating"
	colISBN13 = "ISBN13"
	colShelf  = "Exclusive Shelf"
)

// ParseCSV reads a Goodreads-style library export. Column order is
// free; extra columns are ignored. The shelf and ISBN13 columns are
// optional since older exports lack them, in which case classification
// falls back to the rating sentinel (see Entry.IsRead).
func ParseCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidExport, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colBookID, colTitle, colAuthor, colRating} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidExport, required)
		}
	}
	_, hasShelf := cols[colShelf]
	_, hasISBN := cols[colISBN13]

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidExport, line, err)
		}

		bookID, err := strconv.ParseInt(strings.TrimSpace(rec[cols[colBookID]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad book id %q", ErrInvalidExport, line, rec[cols[colBookID]])
		}
		rating, err := strconv.Atoi(strings.TrimSpace(rec[cols[colRating]]))
		if err != nil || rating < 0 || rating > 5 {
			return nil, fmt.Errorf("%w: line %d: bad rating %q", ErrInvalidExport, line, rec[cols[colRating]])
		}

		e := Entry{
			BookID: bookID,
			Title:  rec[cols[colTitle]],
			Author: rec[cols[colAuthor]],
			Rating: rating,
		}
		if hasShelf {
			e.Shelf = Shelf(strings.TrimSpace(rec[cols[colShelf]]))
		}
		if hasISBN {
			e.ISBN13 = cleanISBN(rec[cols[colISBN13]])
		}
		entries = append(entries, e)
	}

	metrics.LedgerEntriesParsed.Add(float64(len(entries)))
	return entries, nil
}

// cleanISBN strips the ="..." wrapper Goodreads uses to stop
// spreadsheets from mangling ISBNs into numbers.
func cleanISBN(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `="`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

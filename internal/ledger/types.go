// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

// Package ledger parses a reader's exported library and partitions it
// into the read and to-read subsets the ranking pipeline consumes. A
// ledger is request-scoped and never persisted.
package ledger

// Shelf is the exclusive shelf a book sits on in a library export.
type Shelf string

const (
	ShelfRead             Shelf = "read"
	ShelfToRead           Shelf = "to-read"
	ShelfCurrentlyReading Shelf = "currently-reading"
)

// Entry is one normalized row of a library export. Rating is 0-5 where
// 0 means unrated. BookID is the external catalog id as exported; it is
// translated to the internal corpus id during splitting.
type Entry struct {
	BookID int64
	Title  string
	Author string
	ISBN13 string
	Rating int
	Shelf  Shelf
}

// Unrated is the sentinel rating value meaning no rating was recorded.
const Unrated = 0

// IsRead reports whether the entry counts as read history: the read
// shelf, or, in exports without shelf metadata, any recorded rating.
func (e Entry) IsRead() bool {
	if e.Shelf != "" {
		return e.Shelf == ShelfRead
	}
	return e.Rating != Unrated
}

// IsToRead reports whether the entry is a ranking candidate: the
// to-read shelf, or, without shelf metadata, an unrated entry.
func (e Entry) IsToRead() bool {
	if e.Shelf != "" {
		return e.Shelf == ShelfToRead
	}
	return e.Rating == Unrated
}

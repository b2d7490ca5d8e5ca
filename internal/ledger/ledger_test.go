// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package ledger

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const goodreadsHeader = "Book Id,Title,Author,ISBN13,My Rating,Exclusive Shelf"

func TestParseCSV(t *testing.T) {
	input := goodreadsHeader + "\n" +
		`2767052,The Hunger Games,Suzanne Collins,"=""9780439023481""",5,read` + "\n" +
		`5470,1984,George Orwell,"=""9780451524935""",0,to-read` + "\n" +
		`41865,Twilight,Stephenie Meyer,,3,currently-reading` + "\n"

	entries, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Entry{
		{BookID: 2767052, Title: "The Hunger Games", Author: "Suzanne Collins", ISBN13: "9780439023481", Rating: 5, Shelf: ShelfRead},
		{BookID: 5470, Title: "1984", Author: "George Orwell", ISBN13: "9780451524935", Rating: 0, Shelf: ShelfToRead},
		{BookID: 41865, Title: "Twilight", Author: "Stephenie Meyer", Rating: 3, Shelf: ShelfCurrentlyReading},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %+v,\nwant %+v", entries, want)
	}
}

func TestParseCSVColumnOrderIrrelevant(t *testing.T) {
	input := "Exclusive Shelf,My Rating,Author,Title,Book Id\nread,4,A. Author,Some Title,77\n"
	entries, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 || entries[0].BookID != 77 || entries[0].Rating != 4 || entries[0].Shelf != ShelfRead {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseCSVWithoutShelfColumn(t *testing.T) {
	input := "Book Id,Title,Author,My Rating\n1,Rated,A,4\n2,Unrated,B,0\n"
	entries, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !entries[0].IsRead() || entries[0].IsToRead() {
		t.Errorf("rated entry without shelf should classify as read: %+v", entries[0])
	}
	if !entries[1].IsToRead() || entries[1].IsRead() {
		t.Errorf("unrated entry without shelf should classify as to-read: %+v", entries[1])
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "missing required column", input: "Book Id,Title,My Rating\n1,T,4\n"},
		{name: "bad book id", input: "Book Id,Title,Author,My Rating\nabc,T,A,4\n"},
		{name: "rating out of range", input: "Book Id,Title,Author,My Rating\n1,T,A,9\n"},
		{name: "rating not a number", input: "Book Id,Title,Author,My Rating\n1,T,A,five\n"},
		{name: "ragged row", input: "Book Id,Title,Author,My Rating\n1,T,A\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidExport) {
				t.Errorf("err = %v, want ErrInvalidExport", err)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	entries := []Entry{
		{BookID: 100, Title: "Read A", Rating: 5, Shelf: ShelfRead},
		{BookID: 200, Title: "ToRead B", Rating: 0, Shelf: ShelfToRead},
		{BookID: 300, Title: "Unmapped", Rating: 4, Shelf: ShelfRead},
		{BookID: 400, Title: "Reading", Rating: 0, Shelf: ShelfCurrentlyReading},
		{BookID: 500, Title: "Read C", Rating: 3, Shelf: ShelfRead},
	}
	resolved := map[int64]int64{100: 1, 200: 2, 400: 4, 500: 5}

	got := Split(entries, resolved, 876145)

	if got.UserID != 876145 {
		t.Errorf("UserID = %d, want 876145", got.UserID)
	}
	if got.Unmapped != 1 {
		t.Errorf("Unmapped = %d, want 1", got.Unmapped)
	}
	if len(got.Read) != 2 || got.Read[0].InternalBookID != 1 || got.Read[1].InternalBookID != 5 {
		t.Errorf("Read = %+v", got.Read)
	}
	if len(got.ToRead) != 1 || got.ToRead[0].InternalBookID != 2 {
		t.Errorf("ToRead = %+v", got.ToRead)
	}
	// Input order must survive splitting.
	if got.Read[0].Title != "Read A" || got.Read[1].Title != "Read C" {
		t.Errorf("Read order = %q, %q", got.Read[0].Title, got.Read[1].Title)
	}
}

func TestSplitDisjoint(t *testing.T) {
	entries := []Entry{
		{BookID: 1, Rating: 4, Shelf: ShelfRead},
		{BookID: 2, Rating: 0, Shelf: ShelfToRead},
		{BookID: 3, Rating: 2},
		{BookID: 4, Rating: 0},
	}
	resolved := map[int64]int64{1: 1, 2: 2, 3: 3, 4: 4}
	got := Split(entries, resolved, 9)

	inRead := make(map[int64]bool)
	for _, e := range got.Read {
		inRead[e.InternalBookID] = true
	}
	for _, e := range got.ToRead {
		if inRead[e.InternalBookID] {
			t.Errorf("book %d present in both subsets", e.InternalBookID)
		}
	}
	if len(got.Read) != 2 || len(got.ToRead) != 2 {
		t.Errorf("Read=%d ToRead=%d, want 2 and 2", len(got.Read), len(got.ToRead))
	}
}

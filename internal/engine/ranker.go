// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package engine

import (
	"sort"

	"github.com/novelist-app/novelist/internal/ledger"
)

// Prediction is one ranked candidate with its estimated rating and the
// metadata needed to show it to a reader.
type Prediction struct {
	BookID          int64   `json:"book_id"`
	InternalBookID  int64   `json:"-"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	ISBN13          string  `json:"isbn13,omitempty"`
	EstimatedRating float64 `json:"estimated_rating"`
}

// Ranking is the result of one Rank call. Top holds the highest
// estimated candidates in descending order; Bottom the lowest, also in
// descending order, never overlapping Top.
type Ranking struct {
	Top    []Prediction `json:"top"`
	Bottom []Prediction `json:"bottom"`

	// Candidates is the number of to-read books that were actually
	// rankable (mapped and present in the corpus vocabulary).
	Candidates int `json:"candidates"`

	// ReadCount is the number of mapped read books used to fit.
	ReadCount int `json:"read_count"`

	// Unmapped counts ledger entries dropped for lack of an
	// identifier mapping.
	Unmapped int `json:"unmapped"`

	// GlobalMean is the composed corpus's mean rating.
	GlobalMean float64 `json:"global_mean"`
}

// scored pairs a candidate with its estimate; order holds the
// candidate's position in the to-read subset so ties stay stable.
type scored struct {
	internalID int64
	estimate   float64
}

// rankCandidates scores every to-read entry whose internal id appears
// in the corpus vocabulary, sorts descending by estimate with input
// order breaking ties, and cuts top and bottom slices of up to k
// entries each. Entries resolving to the same internal book are scored
// once, keeping the first occurrence. The bottom slice is taken from the tail and shrinks
// before it would overlap the top: with n candidates and effective
// k' = min(k, n), the bottom holds min(k', n−k') entries, so the two
// slices never share a candidate and the middle of a long list is
// omitted entirely.
func rankCandidates(model *Baseline, userID int64, toRead []ledger.ResolvedEntry, vocab map[int64]struct{}, k int) ([]Prediction, []Prediction, int, error) {
	byInternal := make(map[int64]ledger.ResolvedEntry, len(toRead))
	ranked := make([]scored, 0, len(toRead))
	for _, e := range toRead {
		if _, ok := vocab[e.InternalBookID]; !ok {
			continue
		}
		if _, dup := byInternal[e.InternalBookID]; dup {
			// Two external ids collapsing onto one corpus book, usually
			// different editions. Rank the book once, under the first
			// edition's metadata.
			continue
		}
		byInternal[e.InternalBookID] = e
		ranked = append(ranked, scored{
			internalID: e.InternalBookID,
			estimate:   model.Predict(userID, e.InternalBookID),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].estimate > ranked[j].estimate
	})

	n := len(ranked)
	effective := k
	if effective > n {
		effective = n
	}
	bottomLen := n - effective
	if bottomLen > effective {
		bottomLen = effective
	}

	top, err := join(ranked[:effective], byInternal)
	if err != nil {
		return nil, nil, 0, err
	}
	bottom, err := join(ranked[n-bottomLen:], byInternal)
	if err != nil {
		return nil, nil, 0, err
	}
	return top, bottom, n, nil
}

// join attaches ledger metadata to a ranked slice. Every ranked id was
// taken from the ledger, so a miss here means the pipeline corrupted
// its own state and the request must fail loudly.
func join(ranked []scored, byInternal map[int64]ledger.ResolvedEntry) ([]Prediction, error) {
	out := make([]Prediction, 0, len(ranked))
	for _, s := range ranked {
		e, ok := byInternal[s.internalID]
		if !ok {
			return nil, &ConsistencyError{BookID: s.internalID}
		}
		out = append(out, Prediction{
			BookID:          e.BookID,
			InternalBookID:  e.InternalBookID,
			Title:           e.Title,
			Author:          e.Author,
			ISBN13:          e.ISBN13,
			EstimatedRating: s.estimate,
		})
	}
	return out, nil
}

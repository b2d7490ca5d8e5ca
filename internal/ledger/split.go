// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package ledger

// ResolvedEntry is a ledger entry whose external book id was found in
// the identifier reference table.
type ResolvedEntry struct {
	Entry
	InternalBookID int64
}

// SplitResult partitions a ledger for one requester. Read and ToRead
// are disjoint and preserve the ledger's input order. Unmapped counts
// entries dropped because their external id has no internal mapping;
// they never reach either subset. Entries on other shelves (for
// example currently-reading) are mapped but ranked in neither subset.
type SplitResult struct {
	UserID   int64
	Read     []ResolvedEntry
	ToRead   []ResolvedEntry
	Unmapped int
}

// Split partitions entries into read history and ranking candidates.
// resolved maps external book ids to internal corpus ids; entries
// absent from it are counted and dropped. userID is the synthetic
// internal user id stamped on the result, chosen by the caller to be
// distinct from every user in the shared corpus.
func Split(entries []Entry, resolved map[int64]int64, userID int64) SplitResult {
	out := SplitResult{UserID: userID}
	for _, e := range entries {
		internal, ok := resolved[e.BookID]
		if !ok {
			out.Unmapped++
			continue
		}
		re := ResolvedEntry{Entry: e, InternalBookID: internal}
		switch {
		case e.IsRead():
			out.Read = append(out.Read, re)
		case e.IsToRead():
			out.ToRead = append(out.ToRead, re)
		}
	}
	return out
}

// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package corpus

// NextUserID returns an id guaranteed not to collide with any user in
// the shared corpus: one past the maximum observed user id. An empty
// corpus yields 1.
func NextUserID(shared []Rating) int64 {
	var max int64
	for _, r := range shared {
		if r.UserID > max {
			max = r.UserID
		}
	}
	return max + 1
}

// Compose builds a training set from the shared corpus plus one
// reader's injected ratings. The shared slice is never mutated; the
// result is a fresh slice with shared ratings first, injected ratings
// after, so concurrent compositions from the same shared corpus are
// safe.
func Compose(shared, injected []Rating) []Rating {
	out := make([]Rating, 0, len(shared)+len(injected))
	out = append(out, shared...)
	out = append(out, injected...)
	return out
}

// Vocabulary returns the set of book ids present in the given ratings.
func Vocabulary(ratings []Rating) map[int64]struct{} {
	vocab := make(map[int64]struct{})
	for _, r := range ratings {
		vocab[r.BookID] = struct{}{}
	}
	return vocab
}

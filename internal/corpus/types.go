// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

// Package corpus loads the shared rating corpus and composes per-request
// training sets from it. The shared ratings are loaded once and treated
// as immutable afterwards; composition never mutates them.
package corpus

import "context"

// Rating is one (user, book, score) observation. BookID is an internal
// corpus identifier, not an external export identifier.
type Rating struct {
	UserID int64
	BookID int64
	Score  float64
}

// Provider loads the full shared rating corpus.
type Provider interface {
	Ratings(ctx context.Context) ([]Rating, error)
}

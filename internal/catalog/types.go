// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

// Package catalog maps the book identifiers found in a reader's library
// export onto the identifier space of the shared rating corpus. Exports
// and the corpus come from different systems, so the two id spaces only
// partially overlap; the reconciler reports the books it cannot place
// instead of guessing.
package catalog

import "context"

// Mapping links one external book id (as found in a library export) to
// the internal id used by the shared rating corpus.
type Mapping struct {
	ExternalID int64
	InternalID int64
}

// ReferenceProvider supplies identifier mappings for a set of external
// book ids. Implementations must return only mappings whose external id
// was requested; absent ids are simply omitted from the result.
type ReferenceProvider interface {
	// Mappings returns the known mappings for the given external ids.
	// The order of the returned slice is not significant.
	Mappings(ctx context.Context, externalIDs []int64) ([]Mapping, error)
}

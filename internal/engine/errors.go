// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientReadHistory means the requester's mapped read
	// history is below the configured minimum. Recoverable by the user
	// rating more books.
	ErrInsufficientReadHistory = errors.New("not enough rated read books to personalize predictions")

	// ErrInsufficientCandidates means fewer than the minimum number of
	// mapped to-read books were supplied.
	ErrInsufficientCandidates = errors.New("not enough to-read books to rank")

	// ErrEmptyCorpus means the composed training corpus held no
	// ratings at all, so no model can be estimated.
	ErrEmptyCorpus = errors.New("training corpus is empty")
)

// UpstreamError wraps a failure of a backing provider (identifier
// reference table or rating corpus) so callers can distinguish "try
// again later" from "fix your input".
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream provider failure during %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConsistencyError reports a candidate that survived ranking without a
// matching ledger entry. The pipeline constructs candidates from the
// ledger, so this indicates internal corruption, not bad input.
type ConsistencyError struct {
	BookID int64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("ranked candidate %d has no ledger entry", e.BookID)
}

// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package engine

import (
	"context"
	"fmt"

	"github.com/novelist-app/novelist/internal/catalog"
	"github.com/novelist-app/novelist/internal/corpus"
	"github.com/novelist-app/novelist/internal/ledger"
	"github.com/novelist-app/novelist/internal/logging"
)

// Engine runs the ranking pipeline. It holds the shared corpus, loaded
// once at construction and read-only thereafter, so concurrent Rank
// calls are isolated by construction: each call composes its own
// training corpus and fits its own model.
type Engine struct {
	reconciler  *catalog.Reconciler
	params      Params
	shared      []corpus.Rating
	sharedVocab map[int64]struct{}
	nextUserID  int64
}

// New loads the shared corpus through provider and returns a ready
// engine. Provider failures surface as *UpstreamError.
func New(ctx context.Context, reconciler *catalog.Reconciler, provider corpus.Provider, params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	shared, err := provider.Ratings(ctx)
	if err != nil {
		return nil, &UpstreamError{Op: "corpus load", Err: err}
	}

	e := &Engine{
		reconciler:  reconciler,
		params:      params,
		shared:      shared,
		sharedVocab: corpus.Vocabulary(shared),
		nextUserID:  corpus.NextUserID(shared),
	}
	logging.Info().
		Int("ratings", len(shared)).
		Int("books", len(e.sharedVocab)).
		Int64("synthetic_user_id", e.nextUserID).
		Msg("shared corpus loaded")
	return e, nil
}

// SharedSize reports the number of ratings in the shared corpus.
func (e *Engine) SharedSize() int { return len(e.shared) }

// Params returns the engine's fitting parameters.
func (e *Engine) Params() Params { return e.params }

// Rank scores the requester's to-read books and returns the top and
// bottom k. The pipeline: resolve external ids, split the ledger,
// reject thin histories, compose a training corpus with the requester's
// rated read books under a synthetic user id, fit the baseline, rank
// candidates present in the corpus vocabulary.
//
// Read-shelf entries without a rating carry no signal; they are kept
// out of the training corpus and do not count toward the read-history
// minimum.
func (e *Engine) Rank(ctx context.Context, entries []ledger.Entry, k int) (*Ranking, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	externalIDs := make([]int64, len(entries))
	for i, entry := range entries {
		externalIDs[i] = entry.BookID
	}
	resolved, unmapped, err := e.reconciler.Resolve(ctx, externalIDs)
	if err != nil {
		return nil, &UpstreamError{Op: "identifier resolution", Err: err}
	}

	split := ledger.Split(entries, resolved, e.nextUserID)
	if n := split.Unmapped; n != len(unmapped) {
		// Split counts per occurrence, the resolver per unique id, so
		// the counts only differ when the export repeats a book.
		logging.Ctx(ctx).Debug().
			Int("split_unmapped", n).
			Int("resolver_unmapped", len(unmapped)).
			Msg("unmapped counts differ between resolver and splitter")
	}

	injected := make([]corpus.Rating, 0, len(split.Read))
	for _, re := range split.Read {
		if re.Rating == ledger.Unrated {
			continue
		}
		injected = append(injected, corpus.Rating{
			UserID: split.UserID,
			BookID: re.InternalBookID,
			Score:  float64(re.Rating),
		})
	}
	if len(injected) < e.params.MinRead {
		return nil, fmt.Errorf("%w: have %d rated read books, need %d",
			ErrInsufficientReadHistory, len(injected), e.params.MinRead)
	}
	if len(split.ToRead) < e.params.MinToRead {
		return nil, fmt.Errorf("%w: have %d to-read books, need %d",
			ErrInsufficientCandidates, len(split.ToRead), e.params.MinToRead)
	}

	composed := corpus.Compose(e.shared, injected)

	fitCtx := ctx
	if e.params.FitTimeout > 0 {
		var cancel context.CancelFunc
		fitCtx, cancel = context.WithTimeout(ctx, e.params.FitTimeout)
		defer cancel()
	}
	model, err := FitBaseline(fitCtx, composed, e.params)
	if err != nil {
		return nil, err
	}

	vocab := make(map[int64]struct{}, len(e.sharedVocab)+len(injected))
	for id := range e.sharedVocab {
		vocab[id] = struct{}{}
	}
	for _, r := range injected {
		vocab[r.BookID] = struct{}{}
	}

	top, bottom, candidates, err := rankCandidates(model, split.UserID, split.ToRead, vocab, k)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Int("read", len(injected)).
		Int("to_read", len(split.ToRead)).
		Int("candidates", candidates).
		Int("unmapped", split.Unmapped).
		Int("k", k).
		Float64("global_mean", model.Mean()).
		Msg("ranking complete")

	return &Ranking{
		Top:        top,
		Bottom:     bottom,
		Candidates: candidates,
		ReadCount:  len(injected),
		Unmapped:   split.Unmapped,
		GlobalMean: model.Mean(),
	}, nil
}

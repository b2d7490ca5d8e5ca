// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package engine

import (
	"context"
	"time"

	"github.com/novelist-app/novelist/internal/corpus"
	"github.com/novelist-app/novelist/internal/metrics"
)

// Baseline is a fitted additive bias model: predictions are the global
// mean plus a user bias plus an item bias, clamped to the rating scale.
// Users and items the fit never saw contribute a zero bias, so a fully
// unknown pair predicts the global mean. A fitted Baseline is immutable
// and safe for concurrent use.
type Baseline struct {
	mean     float64
	userBias map[int64]float64
	itemBias map[int64]float64
	scaleMin float64
	scaleMax float64
}

// FitBaseline estimates user and item biases over ratings by
// alternating least squares: each epoch recomputes every item bias from
// the current user biases, then every user bias from the fresh item
// biases, each as a regularized mean residual. The global mean is
// computed once up front and never re-estimated. The fit is
// deterministic for a fixed input order.
//
// The context is checked between epochs; an abandoned fit leaves no
// trace since all state is local to the call.
func FitBaseline(ctx context.Context, ratings []corpus.Rating, p Params) (*Baseline, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, ErrEmptyCorpus
	}

	start := time.Now()

	var sum float64
	for _, r := range ratings {
		sum += r.Score
	}
	mean := sum / float64(len(ratings))

	userBias := make(map[int64]float64)
	itemBias := make(map[int64]float64)

	itemSum := make(map[int64]float64)
	itemCount := make(map[int64]int)
	userSum := make(map[int64]float64)
	userCount := make(map[int64]int)

	for epoch := 0; epoch < p.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Item step: b_i from residuals against current user biases.
		clear(itemSum)
		clear(itemCount)
		for _, r := range ratings {
			itemSum[r.BookID] += r.Score - mean - userBias[r.UserID]
			itemCount[r.BookID]++
		}
		for id, s := range itemSum {
			itemBias[id] = s / (p.ItemReg + float64(itemCount[id]))
		}

		// User step: b_u from residuals against the item biases just
		// computed.
		clear(userSum)
		clear(userCount)
		for _, r := range ratings {
			userSum[r.UserID] += r.Score - mean - itemBias[r.BookID]
			userCount[r.UserID]++
		}
		for id, s := range userSum {
			userBias[id] = s / (p.UserReg + float64(userCount[id]))
		}
	}

	metrics.FitDuration.Observe(time.Since(start).Seconds())
	metrics.TrainingCorpusSize.Observe(float64(len(ratings)))

	return &Baseline{
		mean:     mean,
		userBias: userBias,
		itemBias: itemBias,
		scaleMin: p.ScaleMin,
		scaleMax: p.ScaleMax,
	}, nil
}

// Predict estimates the rating user would give book, clamped to the
// rating scale. Unknown users or books fall back to a zero bias, so
// Predict never fails.
func (b *Baseline) Predict(userID, bookID int64) float64 {
	est := b.mean + b.userBias[userID] + b.itemBias[bookID]
	if est < b.scaleMin {
		return b.scaleMin
	}
	if est > b.scaleMax {
		return b.scaleMax
	}
	return est
}

// Mean returns the corpus global mean the model was fit with.
func (b *Baseline) Mean() float64 { return b.mean }

// UserBias returns the fitted bias for userID, zero if unseen.
func (b *Baseline) UserBias(userID int64) float64 { return b.userBias[userID] }

// ItemBias returns the fitted bias for bookID, zero if unseen.
func (b *Baseline) ItemBias(bookID int64) float64 { return b.itemBias[bookID] }

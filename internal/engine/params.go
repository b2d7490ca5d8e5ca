// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

// Package engine fits the bias baseline model and ranks a reader's
// to-read shelf against it. One Rank call is one request-scoped
// pipeline: reconcile identifiers, split the ledger, compose a training
// corpus, fit, rank. The shared corpus is loaded once at construction
// and never mutated afterwards.
package engine

import (
	"fmt"
	"time"
)

// Params controls model fitting and request admission.
type Params struct {
	// Epochs is the number of alternating least squares passes.
	Epochs int

	// ItemReg and UserReg are the Tikhonov regularization terms for
	// item and user biases. The item term is lower because items carry
	// denser signal than a single new user.
	ItemReg float64
	UserReg float64

	// ScaleMin and ScaleMax bound every prediction.
	ScaleMin float64
	ScaleMax float64

	// MinRead is the minimum mapped read history required to rank.
	MinRead int

	// MinToRead is the minimum number of mapped candidates required.
	MinToRead int

	// FitTimeout bounds a single model fit; zero means no bound.
	FitTimeout time.Duration
}

// DefaultParams returns the parameters the model was tuned with.
func DefaultParams() Params {
	return Params{
		Epochs:     5,
		ItemReg:    5,
		UserReg:    10,
		ScaleMin:   1,
		ScaleMax:   5,
		MinRead:    10,
		MinToRead:  2,
		FitTimeout: 2 * time.Minute,
	}
}

// Validate reports the first invalid parameter.
func (p Params) Validate() error {
	if p.Epochs < 1 {
		return fmt.Errorf("epochs must be positive, got %d", p.Epochs)
	}
	if p.ItemReg < 0 || p.UserReg < 0 {
		return fmt.Errorf("regularization must be non-negative, got item=%f user=%f", p.ItemReg, p.UserReg)
	}
	if p.ScaleMin >= p.ScaleMax {
		return fmt.Errorf("rating scale [%f, %f] is empty", p.ScaleMin, p.ScaleMax)
	}
	if p.MinRead < 1 {
		return fmt.Errorf("min read history must be positive, got %d", p.MinRead)
	}
	if p.MinToRead < 2 {
		return fmt.Errorf("min candidates must be at least 2, got %d", p.MinToRead)
	}
	return nil
}

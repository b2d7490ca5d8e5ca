// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package corpus

import (
	"context"

	"github.com/sony/gobreaker/v2"

	"github.com/novelist-app/novelist/internal/breaker"
)

// BreakerProvider wraps a Provider with a circuit breaker. The corpus
// is only loaded at startup and on explicit reloads, but a single load
// can still wedge on an unhealthy store; the breaker bounds that.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[[]Rating]
}

// NewBreakerProvider wraps inner with the shared breaker policy.
func NewBreakerProvider(name string, inner Provider) *BreakerProvider {
	return &BreakerProvider{
		inner:   inner,
		breaker: breaker.New[[]Rating](name),
	}
}

// Ratings implements Provider.
func (p *BreakerProvider) Ratings(ctx context.Context) ([]Rating, error) {
	out, err := p.breaker.Execute(func() ([]Rating, error) {
		return p.inner.Ratings(ctx)
	})
	breaker.Observe(p.breaker.Name(), err)
	return out, err
}

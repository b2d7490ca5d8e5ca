// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package catalog

import (
	"context"

	"github.com/sony/gobreaker/v2"

	"github.com/novelist-app/novelist/internal/breaker"
)

// BreakerProvider wraps a ReferenceProvider with a circuit breaker so a
// failing backing store sheds load quickly instead of stalling every
// ranking request on its timeout.
type BreakerProvider struct {
	inner   ReferenceProvider
	breaker *gobreaker.CircuitBreaker[[]Mapping]
}

// NewBreakerProvider wraps inner with the shared breaker policy.
func NewBreakerProvider(name string, inner ReferenceProvider) *BreakerProvider {
	return &BreakerProvider{
		inner:   inner,
		breaker: breaker.New[[]Mapping](name),
	}
}

// Mappings implements ReferenceProvider.
func (p *BreakerProvider) Mappings(ctx context.Context, externalIDs []int64) ([]Mapping, error) {
	out, err := p.breaker.Execute(func() ([]Mapping, error) {
		return p.inner.Mappings(ctx, externalIDs)
	})
	breaker.Observe(p.breaker.Name(), err)
	return out, err
}

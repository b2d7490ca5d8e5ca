// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/novelist-app/novelist/internal/logging"
	"github.com/novelist-app/novelist/internal/metrics"
)

// Reconciler resolves external book ids against a reference provider.
type Reconciler struct {
	provider ReferenceProvider
}

// NewReconciler creates a Reconciler backed by the given provider.
func NewReconciler(provider ReferenceProvider) *Reconciler {
	return &Reconciler{provider: provider}
}

// Resolve looks up every id in externalIDs and partitions the input into
// a resolved external-to-internal map and a sorted list of ids the
// reference table does not know about. Duplicate requested ids collapse
// to a single lookup. If the provider returns conflicting mappings for
// the same external id, the last one wins and the conflict is logged.
func (r *Reconciler) Resolve(ctx context.Context, externalIDs []int64) (map[int64]int64, []int64, error) {
	unique := make([]int64, 0, len(externalIDs))
	seen := make(map[int64]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	resolved := make(map[int64]int64, len(unique))
	if len(unique) > 0 {
		mappings, err := r.provider.Mappings(ctx, unique)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve identifiers: %w", err)
		}
		for _, m := range mappings {
			if _, ok := seen[m.ExternalID]; !ok {
				// Provider contract violation, not fatal.
				logging.Ctx(ctx).Warn().
					Int64("external_id", m.ExternalID).
					Msg("reference provider returned an unrequested mapping")
				continue
			}
			if prev, ok := resolved[m.ExternalID]; ok && prev != m.InternalID {
				logging.Ctx(ctx).Warn().
					Int64("external_id", m.ExternalID).
					Int64("previous", prev).
					Int64("replacement", m.InternalID).
					Msg("conflicting identifier mapping, keeping the later one")
			}
			resolved[m.ExternalID] = m.InternalID
		}
	}

	unmapped := make([]int64, 0)
	for _, id := range unique {
		if _, ok := resolved[id]; !ok {
			unmapped = append(unmapped, id)
		}
	}
	sort.Slice(unmapped, func(i, j int) bool { return unmapped[i] < unmapped[j] })

	metrics.UnmappedIdentifiers.Add(float64(len(unmapped)))
	return resolved, unmapped, nil
}

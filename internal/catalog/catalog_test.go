// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package catalog

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sony/gobreaker/v2"
)

func TestReadCSVMappings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[int64]int64
		wantErr bool
	}{
		{
			name:  "valid table",
			input: "book_id_csv,book_id\n1,2767052\n2,3\n3,41865\n",
			want:  map[int64]int64{2767052: 1, 3: 2, 41865: 3},
		},
		{
			name:  "empty table",
			input: "book_id_csv,book_id\n",
			want:  map[int64]int64{},
		},
		{
			name:    "wrong header",
			input:   "external,internal\n1,2\n",
			wantErr: true,
		},
		{
			name:    "non integer id",
			input:   "book_id_csv,book_id\n1,abc\n",
			wantErr: true,
		},
		{
			name:    "missing column",
			input:   "book_id_csv,book_id\n1\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := readCSVMappings(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(p.byExternal, tt.want) {
				t.Errorf("got %v, want %v", p.byExternal, tt.want)
			}
		})
	}
}

func TestCSVProviderMappings(t *testing.T) {
	p, err := readCSVMappings(strings.NewReader("book_id_csv,book_id\n10,100\n20,200\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := p.Mappings(context.Background(), []int64{100, 999, 200})
	if err != nil {
		t.Fatalf("mappings: %v", err)
	}
	want := []Mapping{{ExternalID: 100, InternalID: 10}, {ExternalID: 200, InternalID: 20}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

type staticProvider struct {
	mappings []Mapping
	err      error
	calls    [][]int64
}

func (p *staticProvider) Mappings(_ context.Context, ids []int64) ([]Mapping, error) {
	p.calls = append(p.calls, append([]int64(nil), ids...))
	if p.err != nil {
		return nil, p.err
	}
	return p.mappings, nil
}

func TestReconcilerResolve(t *testing.T) {
	provider := &staticProvider{mappings: []Mapping{
		{ExternalID: 100, InternalID: 1},
		{ExternalID: 300, InternalID: 3},
	}}
	r := NewReconciler(provider)

	resolved, unmapped, err := r.Resolve(context.Background(), []int64{100, 200, 300, 100, 50})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if want := map[int64]int64{100: 1, 300: 3}; !reflect.DeepEqual(resolved, want) {
		t.Errorf("resolved = %v, want %v", resolved, want)
	}
	if want := []int64{50, 200}; !reflect.DeepEqual(unmapped, want) {
		t.Errorf("unmapped = %v, want %v", unmapped, want)
	}
	if len(provider.calls) != 1 {
		t.Fatalf("provider called %d times, want 1", len(provider.calls))
	}
	if got := provider.calls[0]; len(got) != 4 {
		t.Errorf("provider saw %d ids, want 4 after deduplication: %v", len(got), got)
	}
}

func TestReconcilerResolveConflict(t *testing.T) {
	provider := &staticProvider{mappings: []Mapping{
		{ExternalID: 100, InternalID: 1},
		{ExternalID: 100, InternalID: 7},
	}}
	r := NewReconciler(provider)

	resolved, _, err := r.Resolve(context.Background(), []int64{100})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved[100] != 7 {
		t.Errorf("resolved[100] = %d, want the later mapping 7", resolved[100])
	}
}

func TestReconcilerResolveEmpty(t *testing.T) {
	provider := &staticProvider{}
	r := NewReconciler(provider)

	resolved, unmapped, err := r.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(resolved) != 0 || len(unmapped) != 0 {
		t.Errorf("resolved=%v unmapped=%v, want both empty", resolved, unmapped)
	}
	if len(provider.calls) != 0 {
		t.Errorf("provider called %d times for empty input, want 0", len(provider.calls))
	}
}

func TestReconcilerResolvePropagatesError(t *testing.T) {
	provider := &staticProvider{err: errors.New("store offline")}
	r := NewReconciler(provider)

	_, _, err := r.Resolve(context.Background(), []int64{1})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestBreakerProviderOpensOnFailures(t *testing.T) {
	provider := &staticProvider{err: errors.New("store offline")}
	bp := NewBreakerProvider("test-catalog", provider)

	ctx := context.Background()
	for i := 0; i < 15; i++ {
		_, _ = bp.Mappings(ctx, []int64{1})
	}

	_, err := bp.Mappings(ctx, []int64{1})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want %v", err, gobreaker.ErrOpenState)
	}
	// The open breaker must not reach the provider anymore.
	calls := len(provider.calls)
	_, _ = bp.Mappings(ctx, []int64{1})
	if len(provider.calls) != calls {
		t.Errorf("provider called while breaker open")
	}
}

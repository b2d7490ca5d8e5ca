// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

// Package metrics provides Prometheus instrumentation for NoveList.
//
// Collectors cover:
//   - API endpoint latency and throughput
//   - Rank pipeline outcomes and model fit duration
//   - Corpus and reference-table provider queries
//   - Circuit breaker state for relational providers
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// Rank pipeline metrics
	RankRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_requests_total",
			Help: "Total number of rank requests by outcome",
		},
		[]string{"outcome"}, // "ok", "invalid_export", "insufficient_read", "insufficient_candidates", "estimation_failure", "upstream_error"
	)

	FitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "baseline_fit_duration_seconds",
			Help:    "Duration of bias baseline model fits in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	TrainingCorpusSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "training_corpus_ratings",
			Help:    "Number of ratings in composed training corpora",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7), // 100 .. 100M
		},
	)

	UnmappedIdentifiers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_unmapped_identifiers_total",
			Help: "Total ledger entries dropped because their book id had no catalog mapping",
		},
	)

	LedgerEntriesParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_entries_parsed_total",
			Help: "Total ledger entries parsed from uploaded library exports",
		},
	)

	// Provider metrics
	ProviderQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_query_duration_seconds",
			Help:    "Duration of reference-table and corpus provider queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "backend"},
	)

	ProviderQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_query_errors_total",
			Help: "Total number of provider query errors",
		},
		[]string{"provider", "backend"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total circuit breaker requests by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// ObserveAPIRequest records one completed HTTP request.
func ObserveAPIRequest(endpoint, method string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// ObserveProviderQuery records one provider round trip.
func ObserveProviderQuery(provider, backend string, duration time.Duration, err error) {
	ProviderQueryDuration.WithLabelValues(provider, backend).Observe(duration.Seconds())
	if err != nil {
		ProviderQueryErrors.WithLabelValues(provider, backend).Inc()
	}
}

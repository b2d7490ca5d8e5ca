// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

// Package api exposes the ranking engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/novelist-app/novelist/internal/logging"
	"github.com/novelist-app/novelist/internal/validation"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Status   string               `json:"status"` // "success" or "error"
	Data     interface{}          `json:"data,omitempty"`
	Error    *validation.APIError `json:"error,omitempty"`
	Metadata Metadata             `json:"metadata"`
}

// Metadata carries response bookkeeping.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	resp := APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondAPIError(w, r, status, &validation.APIError{Code: code, Message: message})
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *validation.APIError) {
	resp := APIResponse{
		Status: "error",
		Error:  apiErr,
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode error response")
	}
}

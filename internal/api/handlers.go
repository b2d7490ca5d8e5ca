// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/novelist-app/novelist/internal/config"
	"github.com/novelist-app/novelist/internal/engine"
	"github.com/novelist-app/novelist/internal/ledger"
	"github.com/novelist-app/novelist/internal/logging"
	"github.com/novelist-app/novelist/internal/metrics"
	"github.com/novelist-app/novelist/internal/validation"
)

// maxUploadBytes bounds an uploaded library export. The largest real
// exports run a few megabytes; 16 MiB leaves generous headroom.
const maxUploadBytes = 16 << 20

// Handler serves the ranking API.
type Handler struct {
	engine  *engine.Engine
	cfg     *config.Config
	started time.Time
}

// NewHandler creates the API handler.
func NewHandler(e *engine.Engine, cfg *config.Config) *Handler {
	return &Handler{engine: e, cfg: cfg, started: time.Now()}
}

type healthResponse struct {
	Status        string  `json:"status"`
	CorpusRatings int     `json:"corpus_ratings"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health reports service status and corpus size.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, healthResponse{
		Status:        "ok",
		CorpusRatings: h.engine.SharedSize(),
		UptimeSeconds: time.Since(h.started).Seconds(),
	})
}

// HealthLive is the liveness probe.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe: ready once the corpus is loaded,
// which New guarantees, so an instance that answers is ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.engine.SharedSize() == 0 {
		respondError(w, r, http.StatusServiceUnavailable, "NOT_READY", "shared corpus is empty")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// Rank accepts a multipart library export upload and returns the
// ranked to-read shelf. Form fields: "library" (the CSV file) and an
// optional "k" (slice size, defaulting to the configured value).
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_UPLOAD", "expected a multipart form with a library file")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to clean up upload")
		}
	}()

	file, _, err := r.FormFile("library")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_UPLOAD", "missing library file field")
		return
	}
	defer file.Close()

	k, ok := h.sliceSize(w, r, r.FormValue("k"))
	if !ok {
		return
	}

	entries, err := ledger.ParseCSV(file)
	if err != nil {
		metrics.RankRequestsTotal.WithLabelValues("invalid_export").Inc()
		respondError(w, r, http.StatusBadRequest, "INVALID_LIBRARY_EXPORT", err.Error())
		return
	}

	h.rank(w, r, entries, k)
}

// profileRankRequest carries the validated inputs of RankProfile. The
// alphanum constraint doubles as path-traversal protection for the
// profile file lookup.
type profileRankRequest struct {
	Name string `validate:"required,alphanum,max=64"`
}

// RankProfile ranks one of the bundled demo library profiles.
func (h *Handler) RankProfile(w http.ResponseWriter, r *http.Request) {
	req := profileRankRequest{Name: chi.URLParam(r, "name")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondAPIError(w, r, http.StatusBadRequest, verr.ToAPIError())
		return
	}
	name := req.Name

	k, ok := h.sliceSize(w, r, r.URL.Query().Get("k"))
	if !ok {
		return
	}

	path := filepath.Join(h.cfg.Profiles.Dir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "PROFILE_NOT_FOUND", fmt.Sprintf("no profile named %q", name))
		return
	}
	defer f.Close()

	entries, err := ledger.ParseCSV(f)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("profile", name).Msg("bundled profile failed to parse")
		respondError(w, r, http.StatusInternalServerError, "PROFILE_CORRUPT", "bundled profile is unreadable")
		return
	}

	h.rank(w, r, entries, k)
}

// Profiles lists the available demo profiles.
func (h *Handler) Profiles(w http.ResponseWriter, r *http.Request) {
	matches, err := filepath.Glob(filepath.Join(h.cfg.Profiles.Dir, "*.csv"))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list profiles")
		return
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".csv"))
	}
	sort.Strings(names)
	respondJSON(w, r, http.StatusOK, map[string][]string{"profiles": names})
}

// sliceSize parses and bounds the requested k. The zero value selects
// the configured default.
func (h *Handler) sliceSize(w http.ResponseWriter, r *http.Request, raw string) (int, bool) {
	if raw == "" {
		return h.cfg.Engine.DefaultK, true
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 || k > h.cfg.Engine.MaxK {
		respondError(w, r, http.StatusBadRequest, "INVALID_K",
			fmt.Sprintf("k must be an integer in [1, %d]", h.cfg.Engine.MaxK))
		return 0, false
	}
	return k, true
}

func (h *Handler) rank(w http.ResponseWriter, r *http.Request, entries []ledger.Entry, k int) {
	ranking, err := h.engine.Rank(r.Context(), entries, k)
	if err != nil {
		status, code, outcome := classifyRankError(err)
		metrics.RankRequestsTotal.WithLabelValues(outcome).Inc()
		respondError(w, r, status, code, err.Error())
		return
	}
	metrics.RankRequestsTotal.WithLabelValues("ok").Inc()
	respondJSON(w, r, http.StatusOK, ranking)
}

// classifyRankError maps engine failures onto HTTP status, response
// code, and metrics outcome. User-recoverable business errors are 422,
// backing-store failures 502, everything else 500.
func classifyRankError(err error) (status int, code, outcome string) {
	var ue *engine.UpstreamError
	switch {
	case errors.Is(err, engine.ErrInsufficientReadHistory):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_READ_HISTORY", "insufficient_read"
	case errors.Is(err, engine.ErrInsufficientCandidates):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_CANDIDATES", "insufficient_candidates"
	case errors.As(err, &ue):
		return http.StatusBadGateway, "UPSTREAM_PROVIDER_ERROR", "upstream_error"
	case errors.Is(err, engine.ErrEmptyCorpus):
		return http.StatusInternalServerError, "ESTIMATION_FAILURE", "estimation_failure"
	default:
		return http.StatusInternalServerError, "ESTIMATION_FAILURE", "estimation_failure"
	}
}

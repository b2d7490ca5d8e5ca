// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novelist-app/novelist/internal/catalog"
	"github.com/novelist-app/novelist/internal/config"
	"github.com/novelist-app/novelist/internal/corpus"
	"github.com/novelist-app/novelist/internal/engine"
)

// testCatalog maps external id n to internal id n−1000.
type testCatalog struct{}

func (testCatalog) Mappings(_ context.Context, ids []int64) ([]catalog.Mapping, error) {
	out := make([]catalog.Mapping, 0, len(ids))
	for _, id := range ids {
		if id < 1000 {
			continue
		}
		out = append(out, catalog.Mapping{ExternalID: id, InternalID: id - 1000})
	}
	return out, nil
}

type testCorpus struct{ ratings []corpus.Rating }

func (c testCorpus) Ratings(context.Context) ([]corpus.Rating, error) { return c.ratings, nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Port: 8632, Timeout: 30 * time.Second},
		Engine: config.EngineConfig{
			Epochs: 5, ItemReg: 5, UserReg: 10,
			MinRead: 10, MinToRead: 2,
			DefaultK: 10, MaxK: 100,
			FitTimeout: time.Minute,
		},
		Profiles: config.ProfilesConfig{Enabled: true, Dir: t.TempDir()},
		Security: config.SecurityConfig{RateLimitDisabled: true, CORSOrigins: []string{"*"}},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *config.Config) {
	t.Helper()
	shared := []corpus.Rating{
		{UserID: 1, BookID: 1, Score: 4},
		{UserID: 1, BookID: 2, Score: 4},
		{UserID: 1, BookID: 3, Score: 4},
	}
	e, err := engine.New(context.Background(), catalog.NewReconciler(testCatalog{}),
		testCorpus{ratings: shared}, engine.DefaultParams())
	require.NoError(t, err)

	cfg := testConfig(t)
	srv := httptest.NewServer(NewRouter(e, cfg))
	t.Cleanup(srv.Close)
	return srv, cfg
}

// libraryCSV builds a Goodreads-style export with nRead rated read
// books and nToRead to-read books, using the testCatalog id scheme.
func libraryCSV(nRead, nToRead int) string {
	var b bytes.Buffer
	b.WriteString("Book Id,Title,Author,My Rating,Exclusive Shelf\n")
	for i := 0; i < nToRead; i++ {
		fmt.Fprintf(&b, "%d,ToRead %d,Author,0,to-read\n", 1001+i, i+1)
	}
	for i := 0; i < nRead; i++ {
		fmt.Fprintf(&b, "%d,Read %d,Author,4,read\n", 1100+i, i+1)
	}
	return b.String()
}

func uploadLibrary(t *testing.T, url, csvBody, k string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("library", "goodreads_library_export.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csvBody))
	require.NoError(t, err)
	if k != "" {
		require.NoError(t, mw.WriteField("k", k))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/api/v1/rank", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response) APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var out APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		body := decodeResponse(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "success", body.Status, path)
	}
}

func TestRankSuccess(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadLibrary(t, srv.URL, libraryCSV(10, 3), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body := decodeResponse(t, resp)
	require.Equal(t, "success", body.Status)
	assert.NotZero(t, body.Metadata.Timestamp)
	assert.NotEmpty(t, body.Metadata.RequestID)

	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var ranking engine.Ranking
	require.NoError(t, json.Unmarshal(data, &ranking))

	assert.Len(t, ranking.Top, 3)
	assert.Empty(t, ranking.Bottom)
	assert.Equal(t, 10, ranking.ReadCount)
	assert.Equal(t, 3, ranking.Candidates)
	assert.InDelta(t, 4.0, ranking.GlobalMean, 1e-9)
	for _, p := range ranking.Top {
		assert.InDelta(t, 4.0, p.EstimatedRating, 1e-9)
	}
}

func TestRankInsufficientReadHistory(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadLibrary(t, srv.URL, libraryCSV(5, 3), "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeResponse(t, resp)
	require.Equal(t, "error", body.Status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INSUFFICIENT_READ_HISTORY", body.Error.Code)
}

func TestRankInsufficientCandidates(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadLibrary(t, srv.URL, libraryCSV(12, 1), "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeResponse(t, resp)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INSUFFICIENT_CANDIDATES", body.Error.Code)
}

func TestRankInvalidExport(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadLibrary(t, srv.URL, "not,a,goodreads\nexport,at,all\n", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeResponse(t, resp)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INVALID_LIBRARY_EXPORT", body.Error.Code)
}

func TestRankMissingFile(t *testing.T) {
	srv, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("k", "5"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/v1/rank", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decodeResponse(t, resp)
	require.NotNil(t, out.Error)
	assert.Equal(t, "INVALID_UPLOAD", out.Error.Code)
}

func TestRankInvalidK(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []string{"0", "-3", "101", "ten"}
	for _, k := range tests {
		resp := uploadLibrary(t, srv.URL, libraryCSV(10, 3), k)
		body := decodeResponse(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "k=%s", k)
		require.NotNil(t, body.Error, "k=%s", k)
		assert.Equal(t, "INVALID_K", body.Error.Code, "k=%s", k)
	}
}

func TestProfiles(t *testing.T) {
	srv, cfg := newTestServer(t)

	profile := filepath.Join(cfg.Profiles.Dir, "demo.csv")
	require.NoError(t, os.WriteFile(profile, []byte(libraryCSV(10, 3)), 0o600))

	resp, err := http.Get(srv.URL + "/api/v1/profiles")
	require.NoError(t, err)
	body := decodeResponse(t, resp)
	require.Equal(t, "success", body.Status)
	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var listing map[string][]string
	require.NoError(t, json.Unmarshal(data, &listing))
	assert.Equal(t, []string{"demo"}, listing["profiles"])

	resp, err = http.Get(srv.URL + "/api/v1/profiles/demo/rank?k=2")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	rankBody := decodeResponse(t, resp)
	assert.Equal(t, "success", rankBody.Status)
}

func TestProfileNameValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/profiles/bad-name/rank")
	require.NoError(t, err)
	body := decodeResponse(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Contains(t, body.Error.Message, "Name")
}

func TestProfileNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/profiles/nosuch/rank")
	require.NoError(t, err)
	body := decodeResponse(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "PROFILE_NOT_FOUND", body.Error.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "test-request-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body := decodeResponse(t, resp)
	assert.Equal(t, "test-request-1", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "test-request-1", body.Metadata.RequestID)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohit1233k/Ranking-agent/internal/analyzer"
	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/models"
	"github.com/mohit1233k/Ranking-agent/internal/searcher"
	"github.com/mohit1233k/Ranking-agent/internal/store"
)

// stubSearcher serves canned results so handler tests never launch a browser
type stubSearcher struct {
	results map[string][]models.SearchResult
	state   searcher.State
}

func (s *stubSearcher) Search(ctx context.Context, keyword string, pages int) []models.SearchResult {
	return s.results[keyword]
}

func (s *stubSearcher) State() searcher.State {
	if s.state == "" {
		return searcher.StateIdle
	}
	return s.state
}

type stubTrigger struct{}

func (stubTrigger) TryRun(ctx context.Context, trigger string) error { return nil }
func (stubTrigger) GetMetrics() string                               { return `{"total_runs": 0}` }

func newTestServer(t *testing.T, stub *stubSearcher) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:             "0",
		TargetDomain:     "example.com",
		Keywords:         []string{"widgets"},
		SearchPages:      1,
		DataDir:          t.TempDir(),
		StoreBackend:     "ndjson",
		BulkDelaySeconds: 0,
	}

	backend, err := store.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	a := analyzer.New(cfg, backend, log)
	return New(cfg, stub, a, stubTrigger{}, log)
}

func postForm(handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	rec := get(srv.Handler(), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "example.com")
	assert.Contains(t, rec.Body.String(), `action="/search"`)
	assert.Contains(t, rec.Body.String(), `action="/bulk-search"`)
}

func TestSearch_EmptyKeyword(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	rec := postForm(srv.Handler(), "/search", url.Values{"keyword": {"   "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "enter a keyword")
}

func TestSearch_RanksAndRendersResult(t *testing.T) {
	stub := &stubSearcher{results: map[string][]models.SearchResult{
		"widgets": {
			{Title: "Other", URL: "https://other.org/x", Snippet: "miss"},
			{Title: "Example Widgets", URL: "https://example.com/widgets", Snippet: "hit"},
		},
	}}
	srv := newTestServer(t, stub)

	rec := postForm(srv.Handler(), "/search", url.Values{"keyword": {"widgets"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "#2")
	assert.Contains(t, rec.Body.String(), "Example Widgets")
}

func TestSearch_NotFound(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	rec := postForm(srv.Handler(), "/search", url.Values{"keyword": {"widgets"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found")
}

func TestBulkSearch_RedirectsToAnalysis(t *testing.T) {
	stub := &stubSearcher{results: map[string][]models.SearchResult{
		"widgets": {{Title: "Example", URL: "https://example.com/w", Snippet: "hit"}},
	}}
	srv := newTestServer(t, stub)

	rec := postForm(srv.Handler(), "/bulk-search", url.Values{
		"keywords": {"widgets\n\ngadgets\n"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/bulk-analysis", rec.Header().Get("Location"))

	// Both keywords were persisted, the blank line was skipped.
	rec = get(srv.Handler(), "/bulk-analysis")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "widgets")
	assert.Contains(t, rec.Body.String(), "gadgets")
	assert.Contains(t, rec.Body.String(), "Not Found")
}

func TestBulkSearch_EmptyInput(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	rec := postForm(srv.Handler(), "/bulk-search", url.Values{"keywords": {"\n  \n"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIRankings(t *testing.T) {
	stub := &stubSearcher{results: map[string][]models.SearchResult{
		"widgets": {{Title: "Example", URL: "https://example.com/w", Snippet: "hit"}},
	}}
	srv := newTestServer(t, stub)

	postForm(srv.Handler(), "/search", url.Values{"keyword": {"widgets"}})

	rec := get(srv.Handler(), "/api/rankings")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string][]models.RankingRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload["widgets"], 1)
	assert.Equal(t, 1, *payload["widgets"][0].Rank)
	assert.Equal(t, "https://example.com/w", *payload["widgets"][0].URL)
}

func TestAPISummary(t *testing.T) {
	stub := &stubSearcher{results: map[string][]models.SearchResult{
		"widgets": {{Title: "Example", URL: "https://example.com/w", Snippet: "hit"}},
	}}
	srv := newTestServer(t, stub)

	postForm(srv.Handler(), "/search", url.Values{"keyword": {"widgets"}})

	rec := get(srv.Handler(), "/api/summary")
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]models.KeywordSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	summary := payload["widgets"]
	require.NotNil(t, summary.Current)
	assert.Equal(t, 1, *summary.Current)
	assert.Equal(t, 1, *summary.Best)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{state: searcher.StateSuspended})

	rec := get(srv.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, "suspended", payload["searcher"])
}

func TestTrigger(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	rec := postForm(srv.Handler(), "/trigger", url.Values{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "triggered")
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	rec := get(srv.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "total_runs")
}

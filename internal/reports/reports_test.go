package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohit1233k/Ranking-agent/internal/analyzer"
	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/models"
	"github.com/mohit1233k/Ranking-agent/internal/store"
)

func newTestGenerator(t *testing.T) (*Generator, *analyzer.Analyzer, string) {
	t.Helper()

	cfg := &config.Config{
		TargetDomain: "example.com",
		DataDir:      t.TempDir(),
		StoreBackend: "ndjson",
	}

	backend, err := store.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	a := analyzer.New(cfg, backend, log)
	return New(cfg, a, log), a, cfg.DataDir
}

func seedRecords(t *testing.T, a *analyzer.Analyzer) {
	t.Helper()
	ctx := context.Background()

	hit := []models.SearchResult{
		{Title: "Other", URL: "https://other.org/x", Snippet: "other"},
		{Title: "Example, Inc", URL: "https://example.com/landing", Snippet: `say "hello"`},
	}

	_, err := a.SaveResults(ctx, "widgets", hit)
	require.NoError(t, err)
	_, err = a.SaveResults(ctx, "gadgets", nil)
	require.NoError(t, err)
}

func TestConsole_IsIdempotent(t *testing.T) {
	gen, a, _ := newTestGenerator(t)
	seedRecords(t, a)

	var first, second bytes.Buffer
	require.NoError(t, gen.Console(context.Background(), &first))
	require.NoError(t, gen.Console(context.Background(), &second))

	assert.Equal(t, first.String(), second.String())
	assert.Contains(t, first.String(), "widgets")
	assert.Contains(t, first.String(), "Not Found")
	assert.Contains(t, first.String(), "N/A", "single-record histories have no trend")
}

func TestConsole_EmptyStore(t *testing.T) {
	gen, _, _ := newTestGenerator(t)

	var out bytes.Buffer
	require.NoError(t, gen.Console(context.Background(), &out))
	assert.Empty(t, out.String())
}

func TestCSV_RoundTrip(t *testing.T) {
	gen, a, _ := newTestGenerator(t)
	seedRecords(t, a)

	path, err := gen.CSV(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "rankings_"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per stored record")

	assert.Equal(t, []string{"Keyword", "Rank", "Title", "URL", "Date", "Snippet"}, rows[0])

	// Store order is preserved and every stored field survives verbatim,
	// commas and quotes included.
	assert.Equal(t, "widgets", rows[1][0])
	assert.Equal(t, "2", rows[1][1])
	assert.Equal(t, "Example, Inc", rows[1][2])
	assert.Equal(t, "https://example.com/landing", rows[1][3])
	assert.Equal(t, `say "hello"`, rows[1][5])

	_, err = time.Parse(time.RFC3339, rows[1][4])
	assert.NoError(t, err, "Date column should be RFC3339")

	assert.Equal(t, "gadgets", rows[2][0])
	assert.Equal(t, "", rows[2][1], "unranked records leave Rank empty")
}

func TestCSV_EmptyStoreWritesNothing(t *testing.T) {
	gen, _, dataDir := newTestGenerator(t)

	path, err := gen.CSV(context.Background())
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".csv"), "no CSV file should exist: %s", e.Name())
	}
}

func TestHTML_Report(t *testing.T) {
	gen, a, _ := newTestGenerator(t)
	seedRecords(t, a)

	path, err := gen.HTML(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "example.com")
	assert.Contains(t, html, "widgets")
	assert.Contains(t, html, "gadgets")
	assert.Contains(t, html, "Not Found")
}

func TestHTML_EmptyStoreWritesNothing(t *testing.T) {
	gen, _, _ := newTestGenerator(t)

	path, err := gen.HTML(context.Background())
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestGenerate_UnknownFormat(t *testing.T) {
	gen, _, _ := newTestGenerator(t)

	_, err := gen.Generate(context.Background(), "pdf", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}

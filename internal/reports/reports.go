package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"

	"github.com/mohit1233k/Ranking-agent/internal/analyzer"
	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/models"
)

// Generator renders the ranking store as console, CSV and HTML reports.
// File reports land in the data directory under a millisecond-timestamped
// name.
type Generator struct {
	analyzer *analyzer.Analyzer
	target   string
	outDir   string
	log      *logrus.Logger
}

// New builds a report Generator
func New(cfg *config.Config, a *analyzer.Analyzer, log *logrus.Logger) *Generator {
	return &Generator{
		analyzer: a,
		target:   cfg.TargetDomain,
		outDir:   cfg.DataDir,
		log:      log,
	}
}

// Generate renders the named format. Console output goes to w; the file
// formats ignore w and return the written path.
func (g *Generator) Generate(ctx context.Context, format string, w io.Writer) (string, error) {
	switch format {
	case "console":
		return "", g.Console(ctx, w)
	case "csv":
		return g.CSV(ctx)
	case "html":
		return g.HTML(ctx)
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}
}

// Console prints one row per keyword: latest rank or Not Found, the trend
// against the previous check, and the latest title and URL when ranked.
// Output depends only on store content, so repeated runs are identical.
func (g *Generator) Console(ctx context.Context, w io.Writer) error {
	grouped, err := g.analyzer.RecordsByKeyword(ctx)
	if err != nil {
		return err
	}
	if len(grouped) == 0 {
		g.log.Warn("No ranking records stored yet, skipping console report")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 48},
		{Number: 5, WidthMax: 64},
	})
	t.AppendHeader(table.Row{"Keyword", "Rank", "Trend", "Title", "URL"})

	for _, keyword := range sortedKeys(grouped) {
		records := grouped[keyword]
		latest := records[0]

		rank, title, link := "Not Found", "", ""
		if latest.Ranked() {
			rank = strconv.Itoa(*latest.Rank)
			title = stringOrEmpty(latest.Title)
			link = stringOrEmpty(latest.URL)
		}

		t.AppendRow(table.Row{keyword, rank, string(analyzer.Trend(records)), title, link})
	}

	t.Render()
	return nil
}

// CSV writes every stored record, in store order, to a timestamped file and
// returns its path. An empty store produces no file.
func (g *Generator) CSV(ctx context.Context) (string, error) {
	records, err := g.analyzer.Records(ctx)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		g.log.Warn("No ranking records stored yet, skipping CSV report")
		return "", nil
	}

	path := filepath.Join(g.outDir, fmt.Sprintf("rankings_%d.csv", time.Now().UnixMilli()))
	f, err := g.createReportFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteCSV(f, records); err != nil {
		return "", err
	}

	g.log.WithField("path", path).Info("CSV report written")
	return path, nil
}

// WriteCSV encodes records with the fixed column set. Exposed separately so
// callers can target any writer.
func WriteCSV(w io.Writer, records []models.RankingRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Keyword", "Rank", "Title", "URL", "Date", "Snippet"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Keyword,
			rankText(r.Rank),
			stringOrEmpty(r.Title),
			stringOrEmpty(r.URL),
			r.Timestamp.Format(time.RFC3339),
			stringOrEmpty(r.Snippet),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}

func (g *Generator) createReportFile(path string) (*os.File, error) {
	if err := os.MkdirAll(g.outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, nil
}

func sortedKeys(grouped map[string][]models.RankingRecord) []string {
	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func rankText(r *int) string {
	if r == nil {
		return ""
	}
	return strconv.Itoa(*r)
}

package reports

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"time"

	"github.com/mohit1233k/Ranking-agent/internal/analyzer"
	"github.com/mohit1233k/Ranking-agent/internal/models"
)

type htmlRow struct {
	Keyword     string
	Rank        string
	Trend       string
	Best        string
	Worst       string
	Checks      int
	LastChecked string
	Title       string
	URL         string
}

type htmlData struct {
	Target      string
	GeneratedAt string
	Keywords    int
	Records     int
	Ranked      int
	Rows        []htmlRow
}

const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Keyword Rankings Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 140px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; width: 100%; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
  .improved { color: green; }
  .dropped { color: red; }
</style>
</head>
<body>
  <h1>Keyword Rankings Report</h1>
  <p><strong>Target domain:</strong> {{.Target}} &mdash; generated {{.GeneratedAt}}</p>

  <div class="stat-card">
    <div>Keywords</div>
    <div class="stat-val">{{.Keywords}}</div>
  </div>
  <div class="stat-card">
    <div>Records</div>
    <div class="stat-val">{{.Records}}</div>
  </div>
  <div class="stat-card">
    <div>Currently Ranked</div>
    <div class="stat-val">{{.Ranked}}</div>
  </div>

  <h3>Latest Positions</h3>
  <table>
    <tr><th>Keyword</th><th>Rank</th><th>Trend</th><th>Best</th><th>Worst</th><th>Checks</th><th>Last Checked</th><th>Title</th><th>URL</th></tr>
    {{- range .Rows}}
    <tr>
      <td>{{.Keyword}}</td>
      <td>{{.Rank}}</td>
      <td class="{{.Trend}}">{{.Trend}}</td>
      <td>{{.Best}}</td>
      <td>{{.Worst}}</td>
      <td>{{.Checks}}</td>
      <td>{{.LastChecked}}</td>
      <td>{{.Title}}</td>
      <td>{{if .URL}}<a href="{{.URL}}">{{.URL}}</a>{{end}}</td>
    </tr>
    {{- end}}
  </table>
</body>
</html>
`

// HTML writes a self-contained report file and returns its path. An empty
// store produces no file.
func (g *Generator) HTML(ctx context.Context) (string, error) {
	grouped, err := g.analyzer.RecordsByKeyword(ctx)
	if err != nil {
		return "", err
	}
	if len(grouped) == 0 {
		g.log.Warn("No ranking records stored yet, skipping HTML report")
		return "", nil
	}

	path := filepath.Join(g.outDir, fmt.Sprintf("rankings_%d.html", time.Now().UnixMilli()))
	f, err := g.createReportFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := g.writeHTML(f, grouped); err != nil {
		return "", err
	}

	g.log.WithField("path", path).Info("HTML report written")
	return path, nil
}

func (g *Generator) writeHTML(w io.Writer, grouped map[string][]models.RankingRecord) error {
	data := htmlData{
		Target:      g.target,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Keywords:    len(grouped),
	}

	for _, keyword := range sortedKeys(grouped) {
		records := grouped[keyword]
		latest := records[0]
		data.Records += len(records)

		row := htmlRow{
			Keyword:     keyword,
			Rank:        "Not Found",
			Trend:       string(analyzer.Trend(records)),
			Checks:      len(records),
			LastChecked: latest.Timestamp.Format("2006-01-02 15:04:05"),
		}

		if latest.Ranked() {
			data.Ranked++
			row.Rank = rankText(latest.Rank)
			row.Title = stringOrEmpty(latest.Title)
			row.URL = stringOrEmpty(latest.URL)
		}

		if best, worst := bestWorst(records); best != nil {
			row.Best = rankText(best)
			row.Worst = rankText(worst)
		}

		data.Rows = append(data.Rows, row)
	}

	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}
	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}

	return nil
}

// bestWorst scans a keyword's records for its numeric extremes, ignoring
// unranked checks.
func bestWorst(records []models.RankingRecord) (best, worst *int) {
	for _, r := range records {
		if !r.Ranked() {
			continue
		}
		if best == nil || *r.Rank < *best {
			v := *r.Rank
			best = &v
		}
		if worst == nil || *r.Rank > *worst {
			v := *r.Rank
			worst = &v
		}
	}
	return best, worst
}

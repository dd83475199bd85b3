package server

import (
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mohit1233k/Ranking-agent/internal/analyzer"
	"github.com/mohit1233k/Ranking-agent/internal/models"
)

const pageStyle = `<style>
body { font-family: sans-serif; max-width: 900px; margin: 2rem auto; padding: 0 1rem; color: #333; }
h1 { border-bottom: 2px solid #1a73e8; padding-bottom: .5rem; }
h2 { margin-top: 2rem; }
form { background: #f5f5f5; padding: 1rem; border-radius: 5px; margin-bottom: 1rem; }
input[type=text], textarea { width: 100%; padding: .5rem; margin: .5rem 0; box-sizing: border-box; }
button { background: #1a73e8; color: white; border: none; padding: .6rem 1.2rem; border-radius: 4px; cursor: pointer; }
table { border-collapse: collapse; width: 100%; margin-top: .5rem; }
th, td { padding: 6px 10px; border: 1px solid #ddd; text-align: left; }
th { background: #eee; }
.rank { font-size: 1.6rem; font-weight: bold; color: #1a73e8; }
.notfound { color: #d13438; }
.improved { color: #107c10; }
.dropped { color: #d13438; }
.meta { font-size: .85rem; color: #666; }
.error { background: #fde7e9; border: 1px solid #d13438; padding: 1rem; border-radius: 5px; }
nav a { margin-right: 1rem; }
</style>`

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Keyword Rank Tracker</title>` + pageStyle + `</head>
<body>
<h1>Keyword Rank Tracker</h1>
<p>Tracking Google positions for <strong>{{.Target}}</strong></p>
<nav><a href="/bulk-analysis">Ranking history</a><a href="/api/rankings">JSON API</a></nav>

<h2>Single search</h2>
<form method="POST" action="/search">
  <input type="text" name="keyword" placeholder="Enter a keyword" required>
  <button type="submit">Check ranking</button>
</form>

<h2>Bulk search</h2>
<form method="POST" action="/bulk-search">
  <textarea name="keywords" rows="6" placeholder="One keyword per line">{{.Keywords}}</textarea>
  <button type="submit">Check all</button>
</form>
<p class="meta">Bulk searches run sequentially with a delay between keywords; expect a wait.</p>
</body>
</html>`))

var resultTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head><title>Result: {{.Keyword}}</title>` + pageStyle + `</head>
<body>
<h1>Result for &ldquo;{{.Keyword}}&rdquo;</h1>
{{if .Found}}
<p class="rank">#{{.Rank}}</p>
<p><strong>{{.Title}}</strong><br><a href="{{.URL}}">{{.URL}}</a></p>
{{if .Snippet}}<p>{{.Snippet}}</p>{{end}}
{{else}}
<p class="notfound">Not found in the first {{.Scanned}} results.</p>
{{end}}
<p class="meta">Checked {{.CheckedAt}}</p>
<nav><a href="/">New search</a><a href="/bulk-analysis">Ranking history</a></nav>
</body>
</html>`))

var bulkTmpl = template.Must(template.New("bulk").Parse(`<!DOCTYPE html>
<html>
<head><title>Ranking History</title>` + pageStyle + `</head>
<body>
<h1>Ranking History</h1>
<nav><a href="/">New search</a></nav>
{{if not .Keywords}}
<p class="meta">No searches recorded yet.</p>
{{end}}
{{range .Keywords}}
<h2>{{.Keyword}}</h2>
<p class="meta">Current: {{.Current}} &mdash; Best: {{.Best}} &mdash; Worst: {{.Worst}} &mdash; Checks: {{.Checks}} &mdash; Trend: <span class="{{.Trend}}">{{.Trend}}</span></p>
<table>
  <tr><th>Date</th><th>Rank</th><th>Title</th><th>URL</th></tr>
  {{- range .Records}}
  <tr>
    <td>{{.Date}}</td>
    <td>{{if .Found}}{{.Rank}}{{else}}<span class="notfound">Not Found</span>{{end}}</td>
    <td>{{.Title}}</td>
    <td>{{if .URL}}<a href="{{.URL}}">{{.URL}}</a>{{end}}</td>
  </tr>
  {{- end}}
</table>
{{end}}
</body>
</html>`))

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>Something went wrong</title>` + pageStyle + `</head>
<body>
<h1>Something went wrong</h1>
<div class="error"><p>{{.Message}}</p></div>
<nav><a href="/">Back to search</a></nav>
</body>
</html>`))

type indexData struct {
	Target   string
	Keywords string
}

type resultData struct {
	Keyword   string
	Found     bool
	Rank      int
	Title     string
	URL       string
	Snippet   string
	Scanned   int
	CheckedAt string
}

type bulkKeyword struct {
	Keyword string
	Current string
	Best    string
	Worst   string
	Checks  int
	Trend   string
	Records []bulkRecord
}

type bulkRecord struct {
	Date  string
	Found bool
	Rank  int
	Title string
	URL   string
}

func (s *Server) renderIndex(w http.ResponseWriter) {
	data := indexData{
		Target:   s.config.TargetDomain,
		Keywords: strings.Join(s.config.Keywords, "\n"),
	}
	s.render(w, http.StatusOK, indexTmpl, data)
}

func (s *Server) renderResult(w http.ResponseWriter, record models.RankingRecord, scanned int) {
	data := resultData{
		Keyword:   record.Keyword,
		Found:     record.Ranked(),
		Scanned:   scanned,
		CheckedAt: record.Timestamp.Format(time.RFC1123),
	}
	if record.Ranked() {
		data.Rank = *record.Rank
		data.Title = derefString(record.Title)
		data.URL = derefString(record.URL)
		data.Snippet = derefString(record.Snippet)
	}
	s.render(w, http.StatusOK, resultTmpl, data)
}

func (s *Server) renderBulkAnalysis(w http.ResponseWriter, grouped map[string][]models.RankingRecord, summaries map[string]models.KeywordSummary) {
	keywords := make([]string, 0, len(grouped))
	for keyword := range grouped {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)

	view := struct{ Keywords []bulkKeyword }{}
	for _, keyword := range keywords {
		records := grouped[keyword]
		summary := summaries[keyword]

		entry := bulkKeyword{
			Keyword: keyword,
			Current: positionText(summary.Current),
			Best:    positionText(summary.Best),
			Worst:   positionText(summary.Worst),
			Checks:  len(records),
			Trend:   string(analyzer.Trend(records)),
		}

		for _, r := range records {
			row := bulkRecord{
				Date:  r.Timestamp.Format("2006-01-02 15:04"),
				Found: r.Ranked(),
				Title: derefString(r.Title),
				URL:   derefString(r.URL),
			}
			if r.Ranked() {
				row.Rank = *r.Rank
			}
			entry.Records = append(entry.Records, row)
		}

		view.Keywords = append(view.Keywords, entry)
	}

	s.render(w, http.StatusOK, bulkTmpl, view)
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.render(w, status, errorTmpl, struct{ Message string }{Message: message})
}

func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		s.log.WithError(err).Errorf("Could not render %s view", tmpl.Name())
	}
}

func positionText(rank *int) string {
	if rank == nil {
		return "–"
	}
	return "#" + strconv.Itoa(*rank)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

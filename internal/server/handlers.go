package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// handleIndex renders the search form
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w)
}

// handleSearch runs a single keyword through search and persistence and
// renders the freshly stored record.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.FormValue("keyword"))
	if keyword == "" {
		s.renderError(w, http.StatusBadRequest, "Please enter a keyword to search for.")
		return
	}

	s.log.WithField("keyword", keyword).Info("Single search requested")

	results := s.searcher.Search(r.Context(), keyword, s.config.SearchPages)

	record, err := s.analyzer.SaveResults(r.Context(), keyword, results)
	if err != nil {
		s.log.WithError(err).Error("Single search could not be persisted")
		s.renderError(w, http.StatusInternalServerError, "The search finished but the result could not be saved.")
		return
	}

	s.renderResult(w, record, len(results))
}

// handleBulkSearch walks a newline-delimited keyword list through search and
// persistence, then sends the browser to the analysis view.
func (s *Server) handleBulkSearch(w http.ResponseWriter, r *http.Request) {
	keywords := splitKeywords(r.FormValue("keywords"))
	if len(keywords) == 0 {
		s.renderError(w, http.StatusBadRequest, "Please enter at least one keyword, one per line.")
		return
	}

	s.log.WithField("keywords", len(keywords)).Info("Bulk search requested")

	for i, keyword := range keywords {
		if r.Context().Err() != nil {
			s.log.Warn("Bulk search abandoned, client went away")
			return
		}

		results := s.searcher.Search(r.Context(), keyword, s.config.SearchPages)

		if _, err := s.analyzer.SaveResults(r.Context(), keyword, results); err != nil {
			s.log.WithError(err).WithField("keyword", keyword).Error("Bulk search aborted on storage failure")
			s.renderError(w, http.StatusInternalServerError, "Bulk search stopped early: results could not be saved.")
			return
		}

		if i < len(keywords)-1 {
			s.pause(r.Context(), time.Duration(s.config.BulkDelaySeconds)*time.Second)
		}
	}

	http.Redirect(w, r, "/bulk-analysis", http.StatusSeeOther)
}

// handleBulkAnalysis renders the stored history grouped by keyword
func (s *Server) handleBulkAnalysis(w http.ResponseWriter, r *http.Request) {
	grouped, err := s.analyzer.RecordsByKeyword(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Could not read rankings for analysis view")
		s.renderError(w, http.StatusInternalServerError, "The ranking history could not be read.")
		return
	}

	summaries, err := s.analyzer.Summaries(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Could not summarize rankings for analysis view")
		s.renderError(w, http.StatusInternalServerError, "The ranking history could not be read.")
		return
	}

	s.renderBulkAnalysis(w, grouped, summaries)
}

// handleAPIRankings returns every keyword's records, most recent first
func (s *Server) handleAPIRankings(w http.ResponseWriter, r *http.Request) {
	grouped, err := s.analyzer.RecordsByKeyword(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Rankings API read failed")
		writeJSONError(w, http.StatusInternalServerError, "failed to read rankings")
		return
	}

	writeJSON(w, http.StatusOK, grouped)
}

// handleAPISummary returns the per-keyword aggregate view
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.analyzer.Summaries(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Summary API read failed")
		writeJSONError(w, http.StatusInternalServerError, "failed to summarize rankings")
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"searcher":  string(s.searcher.State()),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleTrigger kicks a tracking run in the background, like the CLI batch
// but initiated over HTTP.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	go func() {
		if err := s.tracker.TryRun(context.Background(), "http"); err != nil {
			s.log.Errorf("Manual tracking trigger failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Ranking check triggered"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.tracker.GetMetrics()))
}

// pause waits out the inter-keyword delay unless the request is cancelled
func (s *Server) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// splitKeywords turns the bulk form field into a cleaned keyword list
func splitKeywords(raw string) []string {
	var keywords []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			keywords = append(keywords, line)
		}
	}
	return keywords
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

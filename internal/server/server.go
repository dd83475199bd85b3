package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/mohit1233k/Ranking-agent/internal/analyzer"
	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/models"
	"github.com/mohit1233k/Ranking-agent/internal/searcher"
)

// KeywordSearcher is the slice of the searcher the web front end drives
type KeywordSearcher interface {
	Search(ctx context.Context, keyword string, pages int) []models.SearchResult
	State() searcher.State
}

// RunTrigger starts background tracking runs and reports their metrics
type RunTrigger interface {
	TryRun(ctx context.Context, trigger string) error
	GetMetrics() string
}

// Server exposes the web front end (single and bulk search), the JSON API
// and the operational endpoints over one gorilla/mux router.
type Server struct {
	config   *config.Config
	searcher KeywordSearcher
	analyzer *analyzer.Analyzer
	tracker  RunTrigger
	log      *logrus.Logger

	httpServer *http.Server
}

// New builds the Server and wires its routes
func New(cfg *config.Config, s KeywordSearcher, a *analyzer.Analyzer, t RunTrigger, log *logrus.Logger) *Server {
	srv := &Server{
		config:   cfg,
		searcher: s,
		analyzer: a,
		tracker:  t,
		log:      log,
	}

	router := mux.NewRouter()

	// Web front end
	router.HandleFunc("/", srv.handleIndex).Methods("GET")
	router.HandleFunc("/search", srv.handleSearch).Methods("POST")
	router.HandleFunc("/bulk-analysis", srv.handleBulkAnalysis).Methods("GET")
	router.HandleFunc("/bulk-search", srv.handleBulkSearch).Methods("POST")

	// JSON API
	router.HandleFunc("/api/rankings", srv.handleAPIRankings).Methods("GET")
	router.HandleFunc("/api/summary", srv.handleAPISummary).Methods("GET")

	// Operational endpoints
	router.HandleFunc("/health", srv.handleHealth).Methods("GET")
	router.HandleFunc("/trigger", srv.handleTrigger).Methods("POST")
	router.HandleFunc("/metrics", srv.handleMetrics).Methods("GET")

	srv.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
		// Search handlers hold the response open for the whole scrape, so
		// only reads are bounded here.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return srv
}

// Handler returns the root handler, used by the HTTP tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until Shutdown is called or the listener fails
func (s *Server) Start() error {
	s.log.Infof("HTTP server starting on port %s", s.config.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server, letting in-flight requests drain
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

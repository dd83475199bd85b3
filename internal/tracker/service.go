package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mohit1233k/Ranking-agent/internal/analyzer"
	"github.com/mohit1233k/Ranking-agent/internal/archive"
	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/models"
	"github.com/mohit1233k/Ranking-agent/internal/notifications"
	"github.com/mohit1233k/Ranking-agent/internal/reports"
)

// ErrRunInProgress is returned by TryRun when a run is already active
var ErrRunInProgress = errors.New("a tracking run is already in progress")

// KeywordSearcher abstracts the browser-driving searcher
type KeywordSearcher interface {
	Search(ctx context.Context, keyword string, pages int) []models.SearchResult
	Close() error
}

// Service runs the tracking pipeline: search every configured keyword,
// persist each rank observation, then render reports and deliver the run
// summary. Runs are serialized; the CLI, the scheduler and the HTTP
// trigger all share one browser and one store writer.
type Service struct {
	config   *config.Config
	searcher KeywordSearcher
	analyzer *analyzer.Analyzer
	reports  *reports.Generator
	archiver archive.Archiver // nil when archival is not configured
	notifier notifications.NotificationInterface
	log      *logrus.Logger

	runMu   sync.Mutex
	mu      sync.RWMutex
	metrics *Metrics
}

// Metrics holds tracking run metrics
type Metrics struct {
	TotalRuns       int             `json:"total_runs"`
	KeywordsChecked int             `json:"keywords_checked"`
	LastRun         time.Time       `json:"last_run"`
	LastRunDuration string          `json:"last_run_duration"`
	LastTrigger     string          `json:"last_trigger"`
	CurrentRanks    map[string]*int `json:"current_ranks"`
	ErrorCount      int             `json:"error_count"`
}

// NewService creates a new tracking service
func NewService(cfg *config.Config, searcher KeywordSearcher, a *analyzer.Analyzer, gen *reports.Generator, archiver archive.Archiver, notifier notifications.NotificationInterface, log *logrus.Logger) *Service {
	return &Service{
		config:   cfg,
		searcher: searcher,
		analyzer: a,
		reports:  gen,
		archiver: archiver,
		notifier: notifier,
		log:      log,
		metrics: &Metrics{
			CurrentRanks: make(map[string]*int),
		},
	}
}

// Run executes one tracking pass, waiting for any active run to finish
// first. trigger labels the initiator ("cli", "schedule" or "http") in
// logs, metrics and the delivered report.
func (s *Service) Run(ctx context.Context, trigger string) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run(ctx, trigger)
}

// TryRun executes one tracking pass unless one is already active
func (s *Service) TryRun(ctx context.Context, trigger string) error {
	if !s.runMu.TryLock() {
		return ErrRunInProgress
	}
	defer s.runMu.Unlock()
	return s.run(ctx, trigger)
}

func (s *Service) run(ctx context.Context, trigger string) error {
	if len(s.config.Keywords) == 0 {
		return fmt.Errorf("no keywords configured")
	}

	start := time.Now()
	s.log.WithFields(logrus.Fields{
		"trigger":  trigger,
		"keywords": len(s.config.Keywords),
	}).Info("Starting tracking run")

	processed := 0
	errorCount := 0
	var runErr error

	for i, keyword := range s.config.Keywords {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		results := s.searcher.Search(ctx, keyword, s.config.SearchPages)

		if _, err := s.analyzer.SaveResults(ctx, keyword, results); err != nil {
			// A broken store would lose every remaining observation, so
			// the rest of the batch is abandoned.
			s.log.WithError(err).WithField("keyword", keyword).Error("Aborting run on storage failure")
			errorCount++
			runErr = err
			break
		}
		processed++

		if i < len(s.config.Keywords)-1 {
			s.sleep(ctx, time.Duration(s.config.KeywordDelaySeconds)*time.Second)
		}
	}

	duration := time.Since(start)

	if runErr != nil {
		s.updateMetrics(nil, processed, duration, errorCount, trigger)
		s.alertFailure(trigger, runErr)
		return runErr
	}

	grouped, err := s.analyzer.RecordsByKeyword(ctx)
	if err != nil {
		s.updateMetrics(nil, processed, duration, errorCount+1, trigger)
		return fmt.Errorf("failed to read back rankings: %w", err)
	}

	report := s.buildRunReport(trigger, duration, grouped)
	s.updateMetrics(report, processed, duration, errorCount, trigger)

	if err := s.reports.Console(ctx, os.Stdout); err != nil {
		s.log.WithError(err).Error("Console report failed")
	}

	csvPath, err := s.reports.CSV(ctx)
	if err != nil {
		s.log.WithError(err).Error("CSV report failed")
	}

	if s.archiver != nil {
		htmlPath, err := s.reports.HTML(ctx)
		if err != nil {
			s.log.WithError(err).Error("HTML report failed")
		}
		for _, path := range []string{csvPath, htmlPath} {
			if path != "" {
				s.archiveReport(path)
			}
		}
	}

	if s.notifier != nil {
		if err := s.notifier.SendRunReport(report); err != nil {
			s.log.WithError(err).Error("Failed to deliver run report")
		}
	}

	s.log.WithField("duration", duration.String()).Info("Tracking run completed")
	return nil
}

// buildRunReport summarizes the configured keywords from the freshly
// updated store. grouped holds each keyword's records most recent first.
func (s *Service) buildRunReport(trigger string, duration time.Duration, grouped map[string][]models.RankingRecord) *models.RunReport {
	report := &models.RunReport{
		GeneratedAt:  time.Now(),
		Trigger:      trigger,
		Duration:     duration.Round(time.Second).String(),
		TargetDomain: s.config.TargetDomain,
		Keywords:     len(s.config.Keywords),
	}

	for _, keyword := range s.config.Keywords {
		records := grouped[keyword]
		entry := models.RunEntry{
			Keyword: keyword,
			Trend:   analyzer.Trend(records),
		}

		if len(records) > 0 && records[0].Ranked() {
			entry.Rank = records[0].Rank
			report.Ranked++
		} else {
			report.NotFound++
		}

		report.Entries = append(report.Entries, entry)
	}

	return report
}

func (s *Service) archiveReport(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.WithError(err).WithField("path", path).Error("Could not read report for archival")
		return
	}
	if err := s.archiver.Store(filepath.Base(path), data); err != nil {
		s.log.WithError(err).WithField("path", path).Error("Could not archive report")
	}
}

func (s *Service) alertFailure(trigger string, runErr error) {
	if s.notifier == nil {
		return
	}

	alert := &models.Alert{
		ID:        uuid.NewString(),
		Type:      "storage",
		Title:     "Tracking run aborted",
		Message:   fmt.Sprintf("The %s tracking run stopped early: %v", trigger, runErr),
		CreatedAt: time.Now(),
	}
	if err := s.notifier.SendAlert(alert); err != nil {
		s.log.WithError(err).Error("Could not deliver failure alert")
	}
}

func (s *Service) updateMetrics(report *models.RunReport, processed int, duration time.Duration, errorCount int, trigger string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalRuns++
	s.metrics.KeywordsChecked = processed
	s.metrics.LastRun = time.Now()
	s.metrics.LastRunDuration = duration.String()
	s.metrics.LastTrigger = trigger
	s.metrics.ErrorCount = errorCount

	s.metrics.CurrentRanks = make(map[string]*int)
	if report != nil {
		for _, entry := range report.Entries {
			s.metrics.CurrentRanks[entry.Keyword] = entry.Rank
		}
	}
}

// GetMetrics returns current run metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}

// sleep waits out the inter-keyword delay, returning early on cancellation
func (s *Service) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/models"
	"github.com/mohit1233k/Ranking-agent/internal/store"
)

// Analyzer owns the ranking store: it turns search results into persisted
// rank observations and aggregates them for reports and views.
type Analyzer struct {
	target string
	store  store.Backend
	log    *logrus.Logger
}

// New builds an Analyzer over an opened store backend
func New(cfg *config.Config, backend store.Backend, log *logrus.Logger) *Analyzer {
	return &Analyzer{
		target: cfg.TargetDomain,
		store:  backend,
		log:    log,
	}
}

// SaveResults locates the target domain in results, appends one record for
// keyword and returns it. The first matching URL wins; no match is stored
// as a null rank so the history keeps the miss.
func (a *Analyzer) SaveResults(ctx context.Context, keyword string, results []models.SearchResult) (models.RankingRecord, error) {
	record := models.RankingRecord{
		Keyword:   keyword,
		Timestamp: time.Now().UTC(),
	}

	for i, r := range results {
		if r.URL != "" && strings.Contains(r.URL, a.target) {
			rank := i + 1
			title, link, snippet := r.Title, r.URL, r.Snippet
			record.Rank = &rank
			record.Title = &title
			record.URL = &link
			record.Snippet = &snippet
			break
		}
	}

	log := a.log.WithField("keyword", keyword)
	if record.Ranked() {
		log.WithField("rank", *record.Rank).Info("Target domain found")
	} else {
		log.WithField("results", len(results)).Warn("Target domain not found in results")
	}

	if err := a.store.Append(ctx, record); err != nil {
		log.WithError(err).Error("Could not persist ranking record")
		return models.RankingRecord{}, fmt.Errorf("failed to save ranking record: %w", err)
	}

	return record, nil
}

// Records returns every stored observation in append order
func (a *Analyzer) Records(ctx context.Context) ([]models.RankingRecord, error) {
	records, err := a.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking store: %w", err)
	}
	return records, nil
}

// RecordsByKeyword groups the store by keyword, each group sorted most
// recent first.
func (a *Analyzer) RecordsByKeyword(ctx context.Context) (map[string][]models.RankingRecord, error) {
	records, err := a.Records(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.RankingRecord)
	for _, r := range records {
		grouped[r.Keyword] = append(grouped[r.Keyword], r)
	}
	for _, group := range grouped {
		sortLatestFirst(group)
	}

	return grouped, nil
}

// Summaries builds the per-keyword aggregate view over ranked history
func (a *Analyzer) Summaries(ctx context.Context) (map[string]models.KeywordSummary, error) {
	grouped, err := a.RecordsByKeyword(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make(map[string]models.KeywordSummary, len(grouped))
	for keyword, records := range grouped {
		summaries[keyword] = summarize(records)
	}

	return summaries, nil
}

// Trend compares the two most recent records of a keyword. Lower rank is
// the better position, so a numeric decrease reads as improved. Missing
// ranks and single-record histories have no trend.
func Trend(records []models.RankingRecord) models.Trend {
	if len(records) < 2 {
		return models.TrendNA
	}

	latest, previous := records[0], records[1]
	if latest.Rank == nil || previous.Rank == nil {
		return models.TrendNA
	}

	switch {
	case *latest.Rank < *previous.Rank:
		return models.TrendImproved
	case *latest.Rank > *previous.Rank:
		return models.TrendDropped
	default:
		return models.TrendNoChange
	}
}

func sortLatestFirst(records []models.RankingRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}

// summarize expects records sorted most recent first
func summarize(records []models.RankingRecord) models.KeywordSummary {
	summary := models.KeywordSummary{History: []models.HistoryPoint{}}

	for _, r := range records {
		if !r.Ranked() {
			continue
		}
		summary.History = append(summary.History, models.HistoryPoint{
			Rank: *r.Rank,
			Date: r.Timestamp,
		})
	}

	if len(summary.History) == 0 {
		return summary
	}

	current := summary.History[0].Rank
	best, worst := current, current
	for _, p := range summary.History[1:] {
		if p.Rank < best {
			best = p.Rank
		}
		if p.Rank > worst {
			worst = p.Rank
		}
	}

	summary.Current = &current
	summary.Best = &best
	summary.Worst = &worst
	return summary
}

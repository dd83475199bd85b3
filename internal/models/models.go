package models

import "time"

// SearchResult represents a single organic result scraped from a results page
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// RankingRecord represents one persisted rank observation for a keyword.
// Pointer fields marshal to JSON null when the target domain was not found.
type RankingRecord struct {
	Keyword   string    `json:"keyword"`
	Rank      *int      `json:"rank"`      // 1-based position, nil when not found
	Title     *string   `json:"title"`
	URL       *string   `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	Snippet   *string   `json:"snippet"`
}

// Ranked reports whether the record carries a rank position
func (r RankingRecord) Ranked() bool {
	return r.Rank != nil
}

// HistoryPoint is one ranked observation inside a keyword summary
type HistoryPoint struct {
	Rank int       `json:"rank"`
	Date time.Time `json:"date"`
}

// KeywordSummary aggregates the ranked history of a single keyword.
// History is ordered most recent first.
type KeywordSummary struct {
	Current *int           `json:"current"`
	Best    *int           `json:"best"`
	Worst   *int           `json:"worst"`
	History []HistoryPoint `json:"history"`
}

// Trend describes how a keyword's rank moved between its two most recent checks
type Trend string

const (
	TrendImproved Trend = "improved"
	TrendDropped  Trend = "dropped"
	TrendNoChange Trend = "no change"
	TrendNA       Trend = "N/A"
)

// RunReport represents the outcome of one completed tracking run
type RunReport struct {
	GeneratedAt  time.Time  `json:"generated_at"`
	Trigger      string     `json:"trigger"` // "cli", "schedule", "http"
	Duration     string     `json:"duration"`
	TargetDomain string     `json:"target_domain"`
	Keywords     int        `json:"keywords"`
	Ranked       int        `json:"ranked"`
	NotFound     int        `json:"not_found"`
	Entries      []RunEntry `json:"entries"`
}

// RunEntry is the per-keyword line of a run report
type RunEntry struct {
	Keyword string `json:"keyword"`
	Rank    *int   `json:"rank"`
	Trend   Trend  `json:"trend"`
}

// Alert represents an urgent operator notification
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "captcha", "storage", "info"
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Keyword   string    `json:"keyword,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

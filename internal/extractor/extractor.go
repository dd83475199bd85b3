package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mohit1233k/Ranking-agent/internal/models"
)

// SelectorSet describes one known results-page layout
type SelectorSet struct {
	Name      string
	Container string
	Title     string
	Link      string
	Snippet   string
}

// DefaultSelectorSets covers the Google layouts currently in circulation.
// Extraction tries each set in order and keeps the first that yields
// results, so a layout change means adding a set here rather than touching
// callers.
func DefaultSelectorSets() []SelectorSet {
	return []SelectorSet{
		{
			Name:      "desktop",
			Container: "#search .g",
			Title:     "h3",
			Link:      ".yuRUbf a, a",
			Snippet:   ".VwiC3b, .IsZvec",
		},
		{
			Name:      "cards",
			Container: "#search .MjjYud, #rso .MjjYud",
			Title:     "h3",
			Link:      "a",
			Snippet:   ".VwiC3b, .IsZvec, div[role='doc-subtitle']",
		},
		{
			Name:      "legacy",
			Container: "#rso > div, div.g",
			Title:     "h3, h3.LC20lb",
			Link:      "a",
			Snippet:   ".VwiC3b, span.st",
		},
	}
}

// Extractor turns rendered results-page HTML into an ordered result list
type Extractor interface {
	Extract(html string) ([]models.SearchResult, error)
}

// ensure selectorExtractor implements Extractor
var _ Extractor = (*selectorExtractor)(nil)

type selectorExtractor struct {
	sets []SelectorSet
}

// New builds an extractor over the given selector sets, falling back to
// DefaultSelectorSets when none are provided.
func New(sets []SelectorSet) Extractor {
	if len(sets) == 0 {
		sets = DefaultSelectorSets()
	}
	return &selectorExtractor{sets: sets}
}

func (e *selectorExtractor) Extract(html string) ([]models.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	for _, set := range e.sets {
		if results := extractWithSet(doc, set); len(results) > 0 {
			return results, nil
		}
	}

	return nil, nil
}

// extractWithSet walks one layout's containers and keeps entries that carry
// a title or a resolvable link. Results are deduplicated by URL within the
// page.
func extractWithSet(doc *goquery.Document, set SelectorSet) []models.SearchResult {
	var results []models.SearchResult
	seen := make(map[string]bool)

	doc.Find(set.Container).Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(set.Title).First().Text())

		var link string
		if href, ok := s.Find(set.Link).First().Attr("href"); ok {
			link = resolveLink(href)
		}

		if title == "" && link == "" {
			return
		}
		if link != "" {
			if seen[link] {
				return
			}
			seen[link] = true
		}

		results = append(results, models.SearchResult{
			Title:   title,
			URL:     link,
			Snippet: strings.TrimSpace(s.Find(set.Snippet).First().Text()),
		})
	})

	return results
}

// resolveLink unwraps Google's /url? redirect hrefs and drops anything that
// is not an absolute http(s) destination.
func resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	if strings.HasPrefix(href, "/url?") {
		if params, err := url.ParseQuery(strings.SplitN(href, "?", 2)[1]); err == nil {
			if target := params.Get("q"); target != "" {
				href = target
			} else if target := params.Get("url"); target != "" {
				href = target
			}
		}
	}

	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return ""
	}

	return href
}

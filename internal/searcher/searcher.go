package searcher

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mohit1233k/Ranking-agent/internal/browser"
	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/extractor"
	"github.com/mohit1233k/Ranking-agent/internal/models"
	"github.com/mohit1233k/Ranking-agent/internal/useragent"
)

// State describes what the searcher is currently doing
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSuspended State = "suspended" // parked on a CAPTCHA challenge
)

// AlertSink receives operator notifications when scraping is blocked
type AlertSink interface {
	SendAlert(alert *models.Alert) error
}

// Searcher drives result-page scraping for keywords over one shared
// browser. Search never returns an error: failures are logged and whatever
// was collected so far comes back, so a blocked or broken page contributes
// zero results rather than failing the run.
type Searcher struct {
	cfg    *config.Config
	mgr    *browser.Manager
	ext    extractor.Extractor
	pool   *useragent.Pool
	alerts AlertSink
	log    *logrus.Logger

	mu sync.Mutex // serializes Search calls over the shared browser

	stateMu sync.RWMutex
	state   State
}

// New builds a Searcher. alerts may be nil when no operator channel is
// configured.
func New(cfg *config.Config, mgr *browser.Manager, ext extractor.Extractor, alerts AlertSink, log *logrus.Logger) *Searcher {
	return &Searcher{
		cfg:    cfg,
		mgr:    mgr,
		ext:    ext,
		pool:   useragent.NewPool(nil),
		alerts: alerts,
		log:    log,
		state:  StateIdle,
	}
}

// BuildSearchURL forms the query URL for a zero-based results page. Google
// pages by an offset of ten results.
func BuildSearchURL(keyword string, pageIndex int) string {
	return fmt.Sprintf("https://www.google.com/search?q=%s&start=%d&num=10&hl=en",
		url.QueryEscape(keyword), pageIndex*10)
}

// Search scrapes up to pages result pages for keyword and returns the
// accumulated results in ranking order. pages <= 0 falls back to the
// configured default. One tab serves the whole call and is always closed
// before returning.
func (s *Searcher) Search(ctx context.Context, keyword string, pages int) []models.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pages <= 0 {
		pages = s.cfg.SearchPages
	}

	log := s.log.WithField("keyword", keyword)

	page, err := s.mgr.Page()
	if err != nil {
		log.WithError(err).Error("Could not open a browser page")
		return nil
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.WithError(err).Debug("Page close reported an error")
		}
	}()

	s.setState(StateRunning)
	defer s.setState(StateIdle)

	var results []models.SearchResult
	for i := 0; i < pages; i++ {
		if ctx.Err() != nil {
			log.Warn("Search cancelled")
			break
		}

		results = append(results, s.scrapePage(ctx, page, keyword, i, log)...)

		if i < pages-1 {
			s.sleep(ctx, s.cfg.PageDelayMinMs, s.cfg.PageDelayMaxMs)
		}
	}

	log.WithField("results", len(results)).Info("Search finished")
	return results
}

// State reports the searcher's current phase. Safe to call while a search
// is running.
func (s *Searcher) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Close shuts the shared browser down. Idempotent; a later Search relaunches.
func (s *Searcher) Close() error {
	return s.mgr.Close()
}

// scrapePage navigates the tab to one results page and extracts it. Every
// failure is logged and yields an empty slice.
func (s *Searcher) scrapePage(ctx context.Context, page *rod.Page, keyword string, index int, log *logrus.Entry) []models.SearchResult {
	s.sleep(ctx, s.cfg.NavDelayMinMs, s.cfg.NavDelayMaxMs)

	if ua := s.pool.Random(); ua != "" {
		_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua})
	}
	_, _ = page.EvalOnNewDocument(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`)

	searchURL := BuildSearchURL(keyword, index)
	timeout := time.Duration(s.cfg.NavTimeoutSeconds) * time.Second
	pageLog := log.WithField("page", index+1)

	if err := page.Context(ctx).Timeout(timeout).Navigate(searchURL); err != nil {
		pageLog.WithError(err).Error("Navigation failed")
		return nil
	}
	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		pageLog.WithError(err).Warn("Page load wait failed")
	}

	// Wait for network idle so JS-rendered results are populated.
	wait := page.Context(ctx).Timeout(timeout).WaitRequestIdle(
		500*time.Millisecond, nil, nil,
		[]proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia},
	)
	wait()

	html, err := page.HTML()
	if err != nil {
		pageLog.WithError(err).Error("Could not read page HTML")
		return nil
	}

	if extractor.DetectCaptcha(html) {
		html = s.waitForCaptcha(ctx, page, keyword, pageLog)
		if html == "" {
			return nil
		}
	}

	results, err := s.ext.Extract(html)
	if err != nil {
		pageLog.WithError(err).Error("Extraction failed")
		return nil
	}

	pageLog.WithField("results", len(results)).Debug("Page scraped")
	return results
}

// waitForCaptcha parks the searcher in the suspended state, alerts the
// operator, and polls for the challenge to clear within the configured
// bound. Returns the post-challenge HTML, or empty when the wait expires.
func (s *Searcher) waitForCaptcha(ctx context.Context, page *rod.Page, keyword string, log *logrus.Entry) string {
	s.setState(StateSuspended)
	defer s.setState(StateRunning)

	log.Warn("CAPTCHA challenge detected, waiting for manual resolution")

	if s.alerts != nil {
		alert := &models.Alert{
			ID:    uuid.NewString(),
			Type:  "captcha",
			Title: "Search suspended by CAPTCHA",
			Message: fmt.Sprintf("Google served a CAPTCHA challenge while searching %q. "+
				"Solve it in the browser window or wait for the next run.", keyword),
			Keyword:   keyword,
			CreatedAt: time.Now(),
		}
		if err := s.alerts.SendAlert(alert); err != nil {
			log.WithError(err).Warn("Could not deliver CAPTCHA alert")
		}
	}

	deadline := time.Now().Add(time.Duration(s.cfg.CaptchaWaitSeconds) * time.Second)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			log.Warn("CAPTCHA wait cancelled")
			return ""
		case <-ticker.C:
		}

		html, err := page.HTML()
		if err != nil {
			log.WithError(err).Debug("Could not read page during CAPTCHA wait")
			continue
		}
		if !extractor.DetectCaptcha(html) {
			log.Info("CAPTCHA resolved, resuming")
			return html
		}
	}

	log.Warn("CAPTCHA wait expired, skipping page")
	return ""
}

func (s *Searcher) setState(state State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// sleep pauses for a random duration between minMs and maxMs, returning
// early on context cancellation.
func (s *Searcher) sleep(ctx context.Context, minMs, maxMs int) {
	if maxMs <= 0 {
		return
	}
	d := time.Duration(minMs) * time.Millisecond
	if span := maxMs - minMs; span > 0 {
		d += time.Duration(rand.Intn(span+1)) * time.Millisecond
	}

	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

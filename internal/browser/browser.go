package browser

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/sirupsen/logrus"
)

// Manager owns the Chrome process shared by all searches. The browser is
// launched on first use, survives across searches, and can relaunch after
// Close if another search comes in.
type Manager struct {
	mu       sync.Mutex
	headless bool
	binPath  string
	log      *logrus.Logger

	browser *rod.Browser
	lnch    *launcher.Launcher
}

// New creates a Manager. binPath optionally points at a Chrome/Chromium
// executable; when empty, rod resolves or downloads its own.
func New(headless bool, binPath string, log *logrus.Logger) *Manager {
	return &Manager{headless: headless, binPath: binPath, log: log}
}

// Page returns a fresh stealth-patched tab, launching the browser first if
// necessary. The caller owns the page and must close it.
func (m *Manager) Page() (*rod.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		if err := m.launch(); err != nil {
			return nil, err
		}
	}

	page, err := stealth.Page(m.browser)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return page, nil
}

func (m *Manager) launch() error {
	l := launcher.New().
		Headless(m.headless).
		Set("disable-blink-features", "AutomationControlled")

	if m.binPath != "" {
		l = l.Bin(m.binPath)
	}

	url, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	m.browser = b
	m.lnch = l
	m.log.WithField("headless", m.headless).Info("Browser launched")

	return nil
}

// Close shuts the browser down and releases the launcher. Idempotent; the
// next Page call relaunches.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil && m.lnch == nil {
		return nil
	}

	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			m.log.WithError(err).Warn("Browser close reported an error")
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}

	m.log.Info("Browser closed")
	return nil
}

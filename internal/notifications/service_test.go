package notifications

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/models"
)

func intPtr(n int) *int { return &n }

func sampleReport() *models.RunReport {
	return &models.RunReport{
		GeneratedAt:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Trigger:      "schedule",
		Duration:     "2m30s",
		TargetDomain: "example.com",
		Keywords:     2,
		Ranked:       1,
		NotFound:     1,
		Entries: []models.RunEntry{
			{Keyword: "widgets", Rank: intPtr(3), Trend: models.TrendImproved},
			{Keyword: "gadgets", Trend: models.TrendNA},
		},
	}
}

func TestBuildReportMessage(t *testing.T) {
	s := NewService(&config.Config{})
	message := s.buildReportMessage(sampleReport())

	assert.Equal(t, "MessageCard", message.Type)
	assert.Contains(t, message.Text, "example.com")
	assert.Contains(t, message.Text, "1 ranked, 1 not found")

	require.Len(t, message.Sections, 2)
	assert.Equal(t, "Summary", message.Sections[0].ActivityTitle)

	keywords := message.Sections[1].ActivityText
	assert.Contains(t, keywords, "widgets")
	assert.Contains(t, keywords, "rank 3")
	assert.Contains(t, keywords, "improved")
	assert.Contains(t, keywords, "gadgets")
	assert.Contains(t, keywords, "not found")
}

func TestBuildAlertMessage(t *testing.T) {
	s := NewService(&config.Config{})
	alert := &models.Alert{
		Type:      "captcha",
		Title:     "Search suspended by CAPTCHA",
		Message:   "Solve the challenge to resume.",
		Keyword:   "widgets",
		CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}

	message := s.buildAlertMessage(alert)

	assert.Equal(t, "Search suspended by CAPTCHA", message.Title)
	assert.Equal(t, "Solve the challenge to resume.", message.Text)

	require.Len(t, message.Sections, 1)
	var names []string
	for _, fact := range message.Sections[0].Facts {
		names = append(names, fact.Name)
	}
	assert.Contains(t, names, "Keyword")
}

func TestBuildReportText(t *testing.T) {
	s := NewService(&config.Config{})
	text := s.buildReportText(sampleReport())

	assert.Contains(t, text, "Target Domain: example.com")
	assert.Contains(t, text, "widgets: #3 (improved)")
	assert.Contains(t, text, "gadgets: Not Found (N/A)")
}

func TestBuildReportHTML(t *testing.T) {
	s := NewService(&config.Config{})

	html, err := s.buildReportHTML(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, html, "example.com")
	assert.Contains(t, html, "widgets")
	assert.Contains(t, html, "#3")
	assert.Contains(t, html, "Not Found")
}

func TestSendRunReport_Webhook(t *testing.T) {
	received := make(chan bool, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		received <- true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewService(&config.Config{WebhookURL: server.URL})

	require.NoError(t, s.SendRunReport(sampleReport()))
	assert.True(t, <-received)
}

func TestSendRunReport_WebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	s := NewService(&config.Config{WebhookURL: server.URL})

	err := s.SendRunReport(sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSendRunReport_NothingConfigured(t *testing.T) {
	s := NewService(&config.Config{})
	assert.NoError(t, s.SendRunReport(sampleReport()))
}

func TestSendAlert_NothingConfigured(t *testing.T) {
	s := NewService(&config.Config{})
	assert.NoError(t, s.SendAlert(&models.Alert{Type: "info", Title: "t", Message: "m"}))
}

package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const desktopLayout = `
<html><body><div id="search">
  <div class="g">
    <div class="yuRUbf"><a href="https://example.com/tools"><h3>Example Tools</h3></a></div>
    <div class="VwiC3b">The best tools on the internet.</div>
  </div>
  <div class="g">
    <div class="yuRUbf"><a href="https://other.org/post"><h3>Other Post</h3></a></div>
    <div class="VwiC3b">Something else entirely.</div>
  </div>
</div></body></html>`

const cardsLayout = `
<html><body><div id="search">
  <div class="MjjYud">
    <a href="/url?q=https://example.com/guide&amp;sa=U"><h3>Example Guide</h3></a>
    <div class="VwiC3b">A guide behind a redirect link.</div>
  </div>
</div></body></html>`

func TestExtract_DesktopLayout(t *testing.T) {
	results, err := New(nil).Extract(desktopLayout)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Example Tools", results[0].Title)
	assert.Equal(t, "https://example.com/tools", results[0].URL)
	assert.Equal(t, "The best tools on the internet.", results[0].Snippet)
	assert.Equal(t, "Other Post", results[1].Title)
}

func TestExtract_FallsBackAcrossSelectorSets(t *testing.T) {
	// Nothing matches the desktop set; the cards set should pick it up.
	results, err := New(nil).Extract(cardsLayout)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "Example Guide", results[0].Title)
	assert.Equal(t, "https://example.com/guide", results[0].URL, "redirect href should be unwrapped")
}

func TestExtract_SkipsEmptyCandidates(t *testing.T) {
	html := `
<html><body><div id="search">
  <div class="g"><div class="VwiC3b">snippet with no title or link</div></div>
  <div class="g">
    <a href="https://example.com/kept"><h3>Kept</h3></a>
  </div>
</div></body></html>`

	results, err := New(nil).Extract(html)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Kept", results[0].Title)
}

func TestExtract_DeduplicatesByURL(t *testing.T) {
	html := `
<html><body><div id="search">
  <div class="g"><a href="https://example.com/same"><h3>First</h3></a></div>
  <div class="g"><a href="https://example.com/same"><h3>Duplicate</h3></a></div>
</div></body></html>`

	results, err := New(nil).Extract(html)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "First", results[0].Title)
}

func TestExtract_NoResults(t *testing.T) {
	results, err := New(nil).Extract("<html><body><p>nothing here</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResolveLink(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{
			name:     "plain absolute link",
			href:     "https://example.com/page",
			expected: "https://example.com/page",
		},
		{
			name:     "google redirect q parameter",
			href:     "/url?q=https://example.com/page&sa=U&ved=abc",
			expected: "https://example.com/page",
		},
		{
			name:     "google redirect url parameter",
			href:     "/url?url=https://example.com/other",
			expected: "https://example.com/other",
		},
		{
			name:     "relative link dropped",
			href:     "/search?q=more",
			expected: "",
		},
		{
			name:     "javascript link dropped",
			href:     "javascript:void(0)",
			expected: "",
		},
		{
			name:     "empty href",
			href:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveLink(tt.href))
		})
	}
}

func TestDetectCaptcha(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected bool
	}{
		{
			name:     "captcha form",
			html:     `<html><body><form id="captcha-form" action="index"></form></body></html>`,
			expected: true,
		},
		{
			name:     "recaptcha widget",
			html:     `<html><body><div class="g-recaptcha"></div></body></html>`,
			expected: true,
		},
		{
			name:     "unusual traffic interstitial",
			html:     `<html><body><p>Our systems have detected unusual traffic from your computer network.</p></body></html>`,
			expected: true,
		},
		{
			name:     "normal results page",
			html:     desktopLayout,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectCaptcha(tt.html))
		})
	}
}

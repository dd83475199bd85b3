package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// captchaSelectors match the challenge page's form and widget markers
const captchaSelectors = "form#captcha-form, div.g-recaptcha, #recaptcha, body.captcha"

// captchaPhrases appear in the challenge interstitial's body text
var captchaPhrases = []string{
	"unusual traffic",
	"confirm you are a human",
	"verify you are a human",
	"automated queries",
	"suspicious activity",
}

// DetectCaptcha reports whether the page is a bot-check interstitial rather
// than a results page.
func DetectCaptcha(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	if doc.Find(captchaSelectors).Length() > 0 {
		return true
	}

	body := strings.ToLower(doc.Find("body").Text())
	for _, phrase := range captchaPhrases {
		if strings.Contains(body, phrase) {
			return true
		}
	}

	return false
}

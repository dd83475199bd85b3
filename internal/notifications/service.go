package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/models"
)

// Service delivers run reports and operator alerts via the configured
// channels. Unconfigured channels are skipped silently.
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// WebhookMessage is a MessageCard payload, understood by Teams-style
// incoming webhooks.
type WebhookMessage struct {
	Type     string           `json:"@type"`
	Context  string           `json:"@context"`
	Title    string           `json:"title"`
	Text     string           `json:"text"`
	Sections []WebhookSection `json:"sections,omitempty"`
}

type WebhookSection struct {
	ActivityTitle string        `json:"activityTitle,omitempty"`
	ActivityText  string        `json:"activityText,omitempty"`
	Facts         []WebhookFact `json:"facts,omitempty"`
	Markdown      bool          `json:"markdown,omitempty"`
}

type WebhookFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendRunReport delivers a completed-run summary to every configured
// channel, aggregating per-channel failures into one error.
func (s *Service) SendRunReport(report *models.RunReport) error {
	var errors []string

	if s.config.WebhookURL != "" {
		if err := s.sendWebhook(s.buildReportMessage(report)); err != nil {
			logrus.Errorf("Failed to send webhook notification: %v", err)
			errors = append(errors, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Info("Successfully sent run report to webhook")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendReportEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Info("Successfully sent run report via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// SendAlert delivers an urgent operator notification, such as a CAPTCHA
// suspension or a storage failure during a scheduled run.
func (s *Service) SendAlert(alert *models.Alert) error {
	var errors []string

	if s.config.WebhookURL != "" {
		if err := s.sendWebhook(s.buildAlertMessage(alert)); err != nil {
			logrus.Errorf("Failed to send webhook alert: %v", err)
			errors = append(errors, fmt.Sprintf("webhook: %v", err))
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendAlertEmail(alert); err != nil {
			logrus.Errorf("Failed to send email alert: %v", err)
			errors = append(errors, fmt.Sprintf("email: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("alert errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendWebhook(message *WebhookMessage) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.WebhookURL)

	if err != nil {
		return fmt.Errorf("failed to post webhook message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildReportMessage(report *models.RunReport) *WebhookMessage {
	message := &WebhookMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   "Keyword Rankings Report",
		Text: fmt.Sprintf("Checked %d keywords for %s: %d ranked, %d not found",
			report.Keywords, report.TargetDomain, report.Ranked, report.NotFound),
	}

	facts := []WebhookFact{
		{Name: "Generated", Value: report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
		{Name: "Trigger", Value: report.Trigger},
		{Name: "Duration", Value: report.Duration},
		{Name: "Keywords", Value: fmt.Sprintf("%d", report.Keywords)},
		{Name: "Ranked", Value: fmt.Sprintf("%d", report.Ranked)},
		{Name: "Not Found", Value: fmt.Sprintf("%d", report.NotFound)},
	}
	message.Sections = append(message.Sections, WebhookSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	if len(report.Entries) > 0 {
		var lines []string
		for _, entry := range report.Entries {
			position := "not found"
			if entry.Rank != nil {
				position = fmt.Sprintf("rank %d", *entry.Rank)
			}
			lines = append(lines, fmt.Sprintf("**%s** — %s (%s)", entry.Keyword, position, entry.Trend))
		}

		message.Sections = append(message.Sections, WebhookSection{
			ActivityTitle: "Keywords",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) buildAlertMessage(alert *models.Alert) *WebhookMessage {
	message := &WebhookMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   alert.Title,
		Text:    alert.Message,
	}

	facts := []WebhookFact{
		{Name: "Type", Value: alert.Type},
		{Name: "Time", Value: alert.CreatedAt.Format("2006-01-02 15:04:05 UTC")},
	}
	if alert.Keyword != "" {
		facts = append(facts, WebhookFact{Name: "Keyword", Value: alert.Keyword})
	}

	message.Sections = append(message.Sections, WebhookSection{
		ActivityTitle: "Details",
		Facts:         facts,
		Markdown:      true,
	})

	return message
}

func (s *Service) sendReportEmail(report *models.RunReport) error {
	subject := fmt.Sprintf("Keyword Rankings Report (%d/%d ranked)", report.Ranked, report.Keywords)

	htmlBody, err := s.buildReportHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	return s.deliverEmail(subject, s.buildReportText(report), htmlBody)
}

func (s *Service) sendAlertEmail(alert *models.Alert) error {
	subject := fmt.Sprintf("[%s] %s", strings.ToUpper(alert.Type), alert.Title)

	var text strings.Builder
	text.WriteString(alert.Message + "\n\n")
	if alert.Keyword != "" {
		text.WriteString(fmt.Sprintf("Keyword: %s\n", alert.Keyword))
	}
	text.WriteString(fmt.Sprintf("Time: %s\n", alert.CreatedAt.Format("2006-01-02 15:04:05 UTC")))

	return s.deliverEmail(subject, text.String(), "")
}

func (s *Service) deliverEmail(subject, textBody, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildReportHTML(report *models.RunReport) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Keyword Rankings Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #1a73e8; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        table { border-collapse: collapse; width: 100%; }
        th, td { padding: 8px 12px; border: 1px solid #ddd; text-align: left; }
        th { background-color: #eee; }
        .improved { color: #107c10; }
        .dropped { color: #d13438; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Keyword Rankings Report</h1>
        <p>Generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}} ({{.Trigger}} run)</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>Target Domain:</strong> {{.TargetDomain}}</p>
        <p><strong>Keywords Checked:</strong> {{.Keywords}}</p>
        <p><strong>Ranked:</strong> {{.Ranked}} | <strong>Not Found:</strong> {{.NotFound}}</p>
        <p><strong>Duration:</strong> {{.Duration}}</p>
    </div>

    {{if .Entries}}
    <h2>Keywords</h2>
    <table>
        <tr><th>Keyword</th><th>Rank</th><th>Trend</th></tr>
        {{range .Entries}}
        <tr>
            <td>{{.Keyword}}</td>
            <td>{{if .Rank}}#{{.Rank}}{{else}}Not Found{{end}}</td>
            <td class="{{.Trend}}">{{.Trend}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}

    <hr>
    <p><small>This report was generated automatically by the Ranking Agent.</small></p>
</body>
</html>
`

	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildReportText(report *models.RunReport) string {
	var text strings.Builder

	text.WriteString("Keyword Rankings Report\n")
	text.WriteString(fmt.Sprintf("Generated: %s (%s run)\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"), report.Trigger))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Target Domain: %s\n", report.TargetDomain))
	text.WriteString(fmt.Sprintf("Keywords Checked: %d\n", report.Keywords))
	text.WriteString(fmt.Sprintf("Ranked: %d\n", report.Ranked))
	text.WriteString(fmt.Sprintf("Not Found: %d\n", report.NotFound))
	text.WriteString(fmt.Sprintf("Duration: %s\n", report.Duration))

	if len(report.Entries) > 0 {
		text.WriteString("\nKEYWORDS\n")
		text.WriteString("========\n")

		for _, entry := range report.Entries {
			position := "Not Found"
			if entry.Rank != nil {
				position = fmt.Sprintf("#%d", *entry.Rank)
			}
			text.WriteString(fmt.Sprintf("%s: %s (%s)\n", entry.Keyword, position, entry.Trend))
		}
	}

	text.WriteString("\n---\nThis report was generated automatically by the Ranking Agent.\n")

	return text.String()
}

package notifications

import "github.com/mohit1233k/Ranking-agent/internal/models"

// NotificationInterface defines the contract for outbound notifications
type NotificationInterface interface {
	SendRunReport(report *models.RunReport) error
	SendAlert(alert *models.Alert) error
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"reporter/src/config"
	"reporter/src/models"
	"reporter/src/utils"
)

// DefaultMessageTemplate is the notification text used when neither
// the report nor the global configuration provides one.
const DefaultMessageTemplate = "Report {reportName} ({reportType}) finished with status {status} at {timestamp}. {error}"

type webhookPayload struct {
	Text        string `json:"text"`
	ReportID    string `json:"reportId"`
	ReportName  string `json:"reportName"`
	Status      string `json:"status"`
	JobID       string `json:"jobId,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// NotificationService delivers run outcomes to a webhook. Delivery is
// best effort: failures are logged and never escalate into the
// report's own result.
type NotificationService struct {
	WebhookURL      string
	MessageTemplate string
	Client          *http.Client
}

func NewNotificationService(cfg config.NotificationsConfig) *NotificationService {
	return &NotificationService{
		WebhookURL:      cfg.WebhookURL,
		MessageTemplate: cfg.MessageTemplate,
		Client:          &http.Client{Timeout: 15 * time.Second},
	}
}

// NotifyRunOutcome renders and posts the notification for one
// execution attempt, returning whether delivery succeeded.
func (s *NotificationService) NotifyRunOutcome(ctx context.Context, report *models.ScheduledReport, tc utils.TemplateContext, downloadURL string) bool {
	if !report.Notifications.Enabled {
		return false
	}

	logger := utils.ReportLogger(ctx, report.ID, report.Name)

	target := s.WebhookURL
	if !report.Notifications.UseGlobalWebhook && report.Notifications.CustomWebhookURL != "" {
		target = report.Notifications.CustomWebhookURL
	}
	if target == "" {
		logger.Debug("notifications enabled but no webhook configured")
		return false
	}

	template := report.Notifications.MessageTemplate
	if template == "" {
		template = s.MessageTemplate
	}
	if template == "" {
		template = DefaultMessageTemplate
	}

	payload := webhookPayload{
		Text:        utils.RenderTemplate(template, tc),
		ReportID:    report.ID,
		ReportName:  report.Name,
		Status:      tc.Status,
		JobID:       tc.JobID,
		DownloadURL: downloadURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).Warn("could not marshal webhook payload")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewBuffer(body))
	if err != nil {
		logger.WithError(err).Warn("could not build webhook request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		logger.WithError(err).Warn("webhook delivery failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger.WithField("status", resp.StatusCode).Warn("webhook returned non-success status")
		return false
	}
	return true
}

package utils

import (
	"strings"
	"time"
)

// TemplateContext carries the values substituted into file-name,
// folder and notification templates during one execution attempt.
type TemplateContext struct {
	ReportName string
	ReportType string
	Status     string
	Error      string
	JobID      string
	Extension  string
	Timestamp  time.Time
}

// RenderTemplate substitutes the {placeholder} tokens of a template
// from the execution context. Unknown tokens are left untouched so a
// typo is visible in the output instead of silently vanishing.
func RenderTemplate(template string, tc TemplateContext) string {
	replacer := strings.NewReplacer(
		"{reportName}", tc.ReportName,
		"{reportType}", tc.ReportType,
		"{status}", tc.Status,
		"{error}", tc.Error,
		"{jobId}", tc.JobID,
		"{extension}", tc.Extension,
		"{date}", tc.Timestamp.Format("2006-01-02"),
		"{time}", tc.Timestamp.Format("15-04-05"),
		"{timestamp}", tc.Timestamp.Format(time.RFC3339),
	)
	return replacer.Replace(template)
}

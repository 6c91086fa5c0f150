package models

import (
	"time"
)

type ReportFormat string

const (
	FormatCSV  ReportFormat = "csv"
	FormatJSON ReportFormat = "json"
)

// Extension returns the file extension for the format, without the dot.
func (f ReportFormat) Extension() string {
	return string(f)
}

// Trigger is a single recurrence rule of a report schedule. A nil
// Weekday matches every day; otherwise 1..7 maps to Monday..Sunday.
type Trigger struct {
	Weekday *int `json:"weekday,omitempty"`
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
}

// Filter is one field/value pair of a report's filter expression.
// Filters are kept as an ordered slice so the generated query is
// stable across runs.
type Filter struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type Delivery struct {
	StorageConfig       string `json:"storageConfig"`
	FolderTemplate      string `json:"folderTemplate,omitempty"`
	FileNameTemplate    string `json:"fileNameTemplate"`
	ShareLink           bool   `json:"shareLink"`
	ShareLinkExpireDays int    `json:"shareLinkExpireDays,omitempty"`
}

type NotificationSettings struct {
	Enabled          bool   `json:"enabled"`
	UseGlobalWebhook bool   `json:"useGlobalWebhook"`
	CustomWebhookURL string `json:"customWebhookUrl,omitempty"`
	MessageTemplate  string `json:"messageTemplate,omitempty"`
}

// RunResult is the outcome of the most recent execution attempt.
// RunDuration is in seconds and is never negative.
type RunResult struct {
	Success     bool         `json:"success"`
	Format      ReportFormat `json:"format"`
	Error       string       `json:"error,omitempty"`
	RunDuration float64      `json:"runDuration"`
}

type ScheduledReport struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	ReportType    string               `json:"reportType"`
	Format        ReportFormat         `json:"format"`
	Filters       []Filter             `json:"filters,omitempty"`
	Schedule      []Trigger            `json:"schedule"`
	Enabled       bool                 `json:"isEnabled"`
	Delivery      Delivery             `json:"delivery"`
	Notifications NotificationSettings `json:"notifications"`
	LastRun       *time.Time           `json:"lastRun,omitempty"`
	LastRunResult *RunResult           `json:"lastRunResult,omitempty"`
	NextRun       *time.Time           `json:"nextRun,omitempty"`
}

// FileName returns the deterministic definition file name for the report.
func (r *ScheduledReport) FileName() string {
	return r.ID + ".json"
}

// IndexEntry is one row of the report index file maintained alongside
// the per-report definition files.
type IndexEntry struct {
	FileName  string    `json:"fileName"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ReportIndex struct {
	Reports []IndexEntry `json:"reports"`
}

// ExportStatus is the remote job state as reported by the MDM API.
type ExportStatus string

const (
	ExportQueued     ExportStatus = "queued"
	ExportInProgress ExportStatus = "inProgress"
	ExportCompleted  ExportStatus = "completed"
	ExportFailed     ExportStatus = "failed"
)

// ExportJob is transient: it exists only for the duration of one
// execution attempt and is never persisted.
type ExportJob struct {
	ID          string
	Status      ExportStatus
	DownloadURL string
	Error       string
}

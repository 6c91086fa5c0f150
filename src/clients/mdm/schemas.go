package mdm

import (
	"strings"

	"reporter/src/models"
)

// ExportRequest is the payload submitted to create a remote export job.
type ExportRequest struct {
	ReportType string   `json:"reportType"`
	Query      string   `json:"query,omitempty"`
	Columns    []string `json:"columns"`
	Format     string   `json:"format"`
}

type createExportResponse struct {
	ID string `json:"id"`
}

type exportStatusResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

// defaultColumns lists the columns exported for each report type when
// the definition does not narrow them down.
var defaultColumns = map[string][]string{
	"devices": {
		"deviceName", "serialNumber", "model", "osVersion",
		"lastContactTime", "managementStatus",
	},
	"mobileDevices": {
		"deviceName", "serialNumber", "model", "osVersion",
		"lastInventoryUpdate", "supervised",
	},
	"applications": {
		"name", "version", "bundleId", "deviceCount",
	},
	"policyCompliance": {
		"policyName", "deviceName", "status", "lastRunTime",
	},
}

// DefaultColumns returns the column set for a report type. Unknown
// types get an empty set, which the remote API treats as "all".
func DefaultColumns(reportType string) []string {
	cols, ok := defaultColumns[reportType]
	if !ok {
		return nil
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// BuildQuery translates a report's ordered filters into the remote
// API's query expression, e.g. `osVersion=="14.2" and supervised=="true"`.
func BuildQuery(filters []models.Filter) string {
	if len(filters) == 0 {
		return ""
	}
	terms := make([]string, 0, len(filters))
	for _, f := range filters {
		terms = append(terms, f.Field+`=="`+f.Value+`"`)
	}
	return strings.Join(terms, " and ")
}

// parseExportStatus maps the remote status strings onto the local
// state machine. Only statuses that explicitly report failure map to
// ExportFailed; an unrecognized string is treated as still running so
// a new benign vendor status keeps the poll loop alive instead of
// failing the run.
func parseExportStatus(status string) models.ExportStatus {
	switch strings.ToUpper(status) {
	case "QUEUED", "PENDING":
		return models.ExportQueued
	case "IN_PROGRESS", "RUNNING", "PROCESSING":
		return models.ExportInProgress
	case "COMPLETED", "COMPLETE":
		return models.ExportCompleted
	case "FAILED", "ERROR", "CANCELED", "CANCELLED":
		return models.ExportFailed
	default:
		return models.ExportInProgress
	}
}

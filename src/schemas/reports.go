package schemas

import (
	"time"
)

// ReportExecutionResult is the per-report row of a sweep summary.
type ReportExecutionResult struct {
	ReportID        string     `json:"reportId"`
	ReportName      string     `json:"reportName"`
	Success         bool       `json:"success"`
	Error           string     `json:"error,omitempty"`
	JobID           string     `json:"jobId,omitempty"`
	DurationSeconds float64    `json:"durationSeconds"`
	NextRun         *time.Time `json:"nextRun,omitempty"`
}

// ExecutionSummary is returned to the caller that triggered a sweep.
type ExecutionSummary struct {
	TotalReportsChecked  int                     `json:"totalReportsChecked"`
	ReportsExecuted      int                     `json:"reportsExecuted"`
	SuccessfulExecutions int                     `json:"successfulExecutions"`
	FailedExecutions     int                     `json:"failedExecutions"`
	Results              []ReportExecutionResult `json:"results"`
}

type SchedulerStatus struct {
	SchedulerEnabled     bool       `json:"schedulerEnabled"`
	TotalReports         int        `json:"totalReports"`
	EnabledReports       int        `json:"enabledReports"`
	NextReportDue        *time.Time `json:"nextReportDue,omitempty"`
	OverdueReports       int        `json:"overdueReports"`
	AverageExecutionTime *float64   `json:"averageExecutionTime,omitempty"`
}

type OperationResponse struct {
	Success bool `json:"success"`
}

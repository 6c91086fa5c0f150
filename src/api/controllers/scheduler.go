package controllers

import (
	"context"

	"reporter/src/schemas"
)

// RunScheduledReports triggers one full sweep over the stored reports.
func (c *Controller) RunScheduledReports(ctx context.Context) (*schemas.ExecutionSummary, error) {
	return c.Execution.RunDueReports(ctx)
}

// GetSchedulerStatus summarizes the stored report set.
func (c *Controller) GetSchedulerStatus(ctx context.Context) (*schemas.SchedulerStatus, error) {
	return c.Execution.Status(ctx)
}

// SaveReportDefinition persists raw definition bytes from the front end.
func (c *Controller) SaveReportDefinition(ctx context.Context, data []byte, fileName string) error {
	return c.Repo.SaveDefinition(ctx, data, fileName)
}

// DeleteReportDefinition removes a definition and its index entry.
func (c *Controller) DeleteReportDefinition(ctx context.Context, fileName string) error {
	return c.Repo.DeleteDefinition(ctx, fileName)
}

// SaveReportsIndex persists raw index bytes from the front end.
func (c *Controller) SaveReportsIndex(ctx context.Context, data []byte) error {
	return c.Repo.SaveIndex(ctx, data)
}

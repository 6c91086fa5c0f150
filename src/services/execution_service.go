package services

import (
	"context"
	"sync"
	"time"

	"reporter/src/clients/mdm"
	"reporter/src/models"
	"reporter/src/repositories"
	"reporter/src/schemas"
	"reporter/src/utils"
)

// ExecutionService runs the due set through the full export pipeline:
// create and poll the remote job, download, extract, upload, notify,
// then persist the updated schedule state.
type ExecutionService struct {
	Repo          repositories.ReportRepositoryI
	Exports       *ExportService
	Archives      *ArchiveService
	Uploads       *UploadService
	Notifications *NotificationService

	SchedulerEnabled bool
	PollInterval     time.Duration
	JobTimeout       time.Duration
	Location         *time.Location

	// sweepMutex serializes sweeps so a manual trigger and the cron
	// tick can never mutate the same report concurrently.
	sweepMutex sync.Mutex
	now        func() time.Time
}

func NewExecutionService(
	repo repositories.ReportRepositoryI,
	exports *ExportService,
	archives *ArchiveService,
	uploads *UploadService,
	notifications *NotificationService,
	schedulerEnabled bool,
	pollInterval, jobTimeout time.Duration,
	loc *time.Location,
) *ExecutionService {
	if loc == nil {
		loc = time.Local
	}
	return &ExecutionService{
		Repo:             repo,
		Exports:          exports,
		Archives:         archives,
		Uploads:          uploads,
		Notifications:    notifications,
		SchedulerEnabled: schedulerEnabled,
		PollInterval:     pollInterval,
		JobTimeout:       jobTimeout,
		Location:         loc,
		now:              time.Now,
	}
}

// RunDueReports performs one sweep: every stored report is checked and
// each due one is executed sequentially. A failure local to one report
// never aborts the remaining due reports; only an unreadable store
// directory aborts the sweep.
func (s *ExecutionService) RunDueReports(ctx context.Context) (*schemas.ExecutionSummary, error) {
	s.sweepMutex.Lock()
	defer s.sweepMutex.Unlock()

	summary := &schemas.ExecutionSummary{Results: []schemas.ReportExecutionResult{}}

	reports, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return summary, err
	}
	summary.TotalReportsChecked = len(reports)

	now := s.now()
	due := DueReports(reports, now)
	if len(due) == 0 {
		return summary, nil
	}

	logger := utils.LoggerFromContext(ctx)
	logger.WithField("due", len(due)).Info("starting report sweep")

	for _, report := range due {
		result := s.executeReport(ctx, report)
		summary.ReportsExecuted++
		if result.Success {
			summary.SuccessfulExecutions++
		} else {
			summary.FailedExecutions++
		}
		summary.Results = append(summary.Results, result)
	}

	logger.WithFields(map[string]interface{}{
		"executed":  summary.ReportsExecuted,
		"succeeded": summary.SuccessfulExecutions,
		"failed":    summary.FailedExecutions,
	}).Info("report sweep finished")

	return summary, nil
}

// executeReport drives a single report through the pipeline. Whatever
// happens, the report's lastRun/lastRunResult are recorded and nextRun
// advances to the next natural schedule slot, so a failing report is
// not re-attempted on the very next tick.
func (s *ExecutionService) executeReport(ctx context.Context, report *models.ScheduledReport) schemas.ReportExecutionResult {
	logger := utils.ReportLogger(ctx, report.ID, report.Name)
	started := s.now()

	jobID, link, runErr := s.runPipeline(ctx, report)
	duration := s.now().Sub(started)
	if duration < 0 {
		duration = 0
	}

	result := schemas.ReportExecutionResult{
		ReportID:        report.ID,
		ReportName:      report.Name,
		Success:         runErr == nil,
		JobID:           jobID,
		DurationSeconds: duration.Seconds(),
	}

	tc := utils.TemplateContext{
		ReportName: report.Name,
		ReportType: report.ReportType,
		Status:     "success",
		JobID:      jobID,
		Extension:  report.Format.Extension(),
		Timestamp:  s.now(),
	}
	if runErr != nil {
		result.Error = runErr.Error()
		tc.Status = "failed"
		tc.Error = runErr.Error()
		logger.WithError(runErr).Error("report execution failed")
	} else {
		logger.WithField("duration", duration.String()).Info("report execution succeeded")
	}

	s.Notifications.NotifyRunOutcome(ctx, report, tc, link)

	report.LastRun = &started
	report.LastRunResult = &models.RunResult{
		Success:     runErr == nil,
		Format:      report.Format,
		Error:       result.Error,
		RunDuration: duration.Seconds(),
	}
	if next, ok := NextRun(report.Schedule, s.now(), s.Location); ok {
		report.NextRun = &next
		result.NextRun = &next
	} else {
		report.NextRun = nil
	}

	if err := s.Repo.Save(ctx, report); err != nil {
		logger.WithError(err).Error("could not persist report state")
		if result.Success {
			result.Success = false
			result.Error = "persisting report state: " + err.Error()
		}
	}

	return result
}

// runPipeline is the success path of one attempt; it returns the job
// ID (when one was created), the share link (when requested), and the
// first error encountered.
func (s *ExecutionService) runPipeline(ctx context.Context, report *models.ScheduledReport) (jobID, link string, err error) {
	req := mdm.ExportRequest{
		ReportType: report.ReportType,
		Query:      mdm.BuildQuery(report.Filters),
		Columns:    mdm.DefaultColumns(report.ReportType),
		Format:     string(report.Format),
	}

	exported, err := s.Exports.RunExport(ctx, req, PollOptions{
		Interval: s.PollInterval,
		MaxWait:  s.JobTimeout,
	})
	if exported != nil {
		jobID = exported.JobID
	}
	if err != nil {
		return jobID, "", err
	}

	payload, _, err := s.Archives.ExtractReportFile(ctx, exported.Archive, report.Format)
	if err != nil {
		return jobID, "", err
	}

	tc := utils.TemplateContext{
		ReportName: report.Name,
		ReportType: report.ReportType,
		JobID:      jobID,
		Extension:  report.Format.Extension(),
		Timestamp:  s.now(),
	}
	uploaded, err := s.Uploads.UploadReport(ctx, report, tc, payload)
	if err != nil {
		return jobID, "", err
	}
	return jobID, uploaded.Link, nil
}

// Status aggregates the stored report set for the front end's
// scheduler overview.
func (s *ExecutionService) Status(ctx context.Context) (*schemas.SchedulerStatus, error) {
	reports, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	status := &schemas.SchedulerStatus{
		SchedulerEnabled: s.SchedulerEnabled,
		TotalReports:     len(reports),
	}

	now := s.now()
	var durationSum float64
	var durationCount int
	for _, report := range reports {
		if report.Enabled {
			status.EnabledReports++
		}
		if IsDue(report, now) {
			status.OverdueReports++
		}
		if report.Enabled && report.NextRun != nil {
			if status.NextReportDue == nil || report.NextRun.Before(*status.NextReportDue) {
				status.NextReportDue = report.NextRun
			}
		}
		if report.LastRunResult != nil {
			durationSum += report.LastRunResult.RunDuration
			durationCount++
		}
	}
	if durationCount > 0 {
		avg := durationSum / float64(durationCount)
		status.AverageExecutionTime = &avg
	}
	return status, nil
}

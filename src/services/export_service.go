package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reporter/src/clients/mdm"
	"reporter/src/models"
	"reporter/src/utils"
)

const (
	// DefaultPollInterval is the wait between status checks.
	DefaultPollInterval = 10 * time.Second
	// DefaultMaxWait caps ad-hoc export calls; the scheduled pipeline
	// passes its own configured cap.
	DefaultMaxWait = 300 * time.Second
)

// ErrExportTimeout marks a job that reached neither completion nor
// failure within the caller's maximum wait.
var ErrExportTimeout = errors.New("export job timed out")

type PollOptions struct {
	Interval time.Duration
	MaxWait  time.Duration
}

type ExportResult struct {
	JobID   string
	Archive []byte
}

// ExportService drives a remote export job from creation through
// polling to archive download.
type ExportService struct {
	Client mdm.Client
}

func NewExportService(client mdm.Client) *ExportService {
	return &ExportService{Client: client}
}

// RunExport submits the export request and polls until the job
// completes, fails, or the maximum wait runs out. A status-check error
// aborts the job immediately; the poll loop itself never retries a
// failed check. On failure after creation the result still carries
// the job ID so callers can reference it in notifications.
func (s *ExportService) RunExport(ctx context.Context, req mdm.ExportRequest, opts PollOptions) (*ExportResult, error) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}

	jobID, err := s.Client.CreateExportJob(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating export job: %w", err)
	}

	logger := utils.LoggerFromContext(ctx).WithField("job_id", jobID)
	logger.WithField("report_type", req.ReportType).Info("export job created")

	deadline := time.Now().Add(opts.MaxWait)
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return &ExportResult{JobID: jobID}, fmt.Errorf("export job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}

		job, err := s.Client.GetExportJob(ctx, jobID)
		if err != nil {
			return &ExportResult{JobID: jobID}, fmt.Errorf("checking export job %s: %w", jobID, err)
		}

		switch job.Status {
		case models.ExportCompleted:
			archive, err := s.Client.Download(ctx, job.DownloadURL)
			if err != nil {
				return &ExportResult{JobID: jobID}, fmt.Errorf("downloading export job %s: %w", jobID, err)
			}
			logger.WithField("bytes", len(archive)).Info("export archive downloaded")
			return &ExportResult{JobID: jobID, Archive: archive}, nil
		case models.ExportFailed:
			msg := job.Error
			if msg == "" {
				msg = "remote job reported failure"
			}
			return &ExportResult{JobID: jobID}, fmt.Errorf("export job %s failed: %s", jobID, msg)
		}

		if time.Now().After(deadline) {
			return &ExportResult{JobID: jobID}, fmt.Errorf("export job %s after %s: %w", jobID, opts.MaxWait, ErrExportTimeout)
		}
	}
}

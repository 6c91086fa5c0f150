package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reporter/src/clients/mdm"
	"reporter/src/models"
	"reporter/src/services"
)

// fakeMDMClient scripts the remote job lifecycle for tests.
type fakeMDMClient struct {
	mutex sync.Mutex

	createErr    error
	statuses     []models.ExportJob
	statusErr    error
	archive      []byte
	downloadErr  error
	statusCalls  int
	downloads    int
	lastRequest  mdm.ExportRequest
	createdJobID string
}

func (f *fakeMDMClient) CreateExportJob(_ context.Context, req mdm.ExportRequest) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.lastRequest = req
	if f.createdJobID == "" {
		f.createdJobID = "job-1"
	}
	return f.createdJobID, nil
}

func (f *fakeMDMClient) GetExportJob(_ context.Context, jobID string) (*models.ExportJob, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	idx := f.statusCalls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.statusCalls++
	job := f.statuses[idx]
	job.ID = jobID
	return &job, nil
}

func (f *fakeMDMClient) Download(_ context.Context, _ string) ([]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.downloads++
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return f.archive, nil
}

func fastPoll() services.PollOptions {
	return services.PollOptions{Interval: 2 * time.Millisecond, MaxWait: 200 * time.Millisecond}
}

func TestRunExportCompletes(t *testing.T) {
	client := &fakeMDMClient{
		statuses: []models.ExportJob{
			{Status: models.ExportQueued},
			{Status: models.ExportInProgress},
			{Status: models.ExportCompleted, DownloadURL: "https://mdm.example.com/dl/job-1"},
		},
		archive: []byte("zipbytes"),
	}
	svc := services.NewExportService(client)

	result, err := svc.RunExport(context.Background(), mdm.ExportRequest{ReportType: "devices"}, fastPoll())

	require.NoError(t, err)
	assert.Equal(t, "job-1", result.JobID)
	assert.Equal(t, []byte("zipbytes"), result.Archive)
	assert.GreaterOrEqual(t, client.statusCalls, 3)
}

func TestRunExportFailedStatusStopsImmediately(t *testing.T) {
	client := &fakeMDMClient{
		statuses: []models.ExportJob{
			{Status: models.ExportFailed, Error: "report type not licensed"},
		},
	}
	svc := services.NewExportService(client)

	result, err := svc.RunExport(context.Background(), mdm.ExportRequest{}, fastPoll())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "report type not licensed")
	assert.Equal(t, "job-1", result.JobID)
	assert.Zero(t, client.downloads, "a failed job must never be downloaded")
}

func TestRunExportStatusCheckErrorAborts(t *testing.T) {
	client := &fakeMDMClient{statusErr: errors.New("connection reset")}
	svc := services.NewExportService(client)

	_, err := svc.RunExport(context.Background(), mdm.ExportRequest{}, fastPoll())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 0, client.downloads)
}

func TestRunExportTimesOut(t *testing.T) {
	client := &fakeMDMClient{
		statuses: []models.ExportJob{{Status: models.ExportInProgress}},
	}
	svc := services.NewExportService(client)

	_, err := svc.RunExport(context.Background(), mdm.ExportRequest{}, services.PollOptions{
		Interval: 2 * time.Millisecond,
		MaxWait:  10 * time.Millisecond,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrExportTimeout)
}

func TestRunExportCreateError(t *testing.T) {
	client := &fakeMDMClient{createErr: errors.New("401 Unauthorized")}
	svc := services.NewExportService(client)

	_, err := svc.RunExport(context.Background(), mdm.ExportRequest{}, fastPoll())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating export job")
}

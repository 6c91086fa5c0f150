package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reporter/src/api"
	"reporter/src/schemas"
	"reporter/src/utils"
)

// fakeController records calls and returns canned responses.
type fakeController struct {
	locks *utils.OperationLock

	savedDefinition []byte
	savedFileName   string
	deletedFileName string
	savedIndex      []byte
	sweepErr        error
}

func (f *fakeController) RunScheduledReports(_ context.Context) (*schemas.ExecutionSummary, error) {
	if f.sweepErr != nil {
		return nil, f.sweepErr
	}
	return &schemas.ExecutionSummary{
		TotalReportsChecked:  3,
		ReportsExecuted:      2,
		SuccessfulExecutions: 1,
		FailedExecutions:     1,
		Results:              []schemas.ReportExecutionResult{},
	}, nil
}

func (f *fakeController) GetSchedulerStatus(_ context.Context) (*schemas.SchedulerStatus, error) {
	return &schemas.SchedulerStatus{SchedulerEnabled: true, TotalReports: 3, EnabledReports: 2}, nil
}

func (f *fakeController) SaveReportDefinition(_ context.Context, data []byte, fileName string) error {
	f.savedDefinition = data
	f.savedFileName = fileName
	return nil
}

func (f *fakeController) DeleteReportDefinition(_ context.Context, fileName string) error {
	f.deletedFileName = fileName
	return nil
}

func (f *fakeController) SaveReportsIndex(_ context.Context, data []byte) error {
	f.savedIndex = data
	return nil
}

func (f *fakeController) BeginOperation(_ context.Context, identifier string, timeout time.Duration) bool {
	return f.locks.Begin(identifier, timeout)
}

func (f *fakeController) EndOperation(_ context.Context, identifier string) {
	f.locks.End(identifier)
}

func newTestServer() (*httptest.Server, *fakeController) {
	controller := &fakeController{locks: utils.NewOperationLock()}
	server := httptest.NewServer(api.NewServer(controller))
	return server, controller
}

func TestHealthcheck(t *testing.T) {
	server, _ := newTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/alive")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExecuteScheduledReports(t *testing.T) {
	server, _ := newTestServer()
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/scheduler/run", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary schemas.ExecutionSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 3, summary.TotalReportsChecked)
	assert.Equal(t, 2, summary.ReportsExecuted)
}

func TestExecuteScheduledReportsSweepFailure(t *testing.T) {
	server, controller := newTestServer()
	defer server.Close()
	controller.sweepErr = errors.New("open reports dir: permission denied")

	resp, err := http.Post(server.URL+"/api/scheduler/run", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetSchedulerStatus(t *testing.T) {
	server, _ := newTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/scheduler/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status schemas.SchedulerStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.SchedulerEnabled)
	assert.Equal(t, 3, status.TotalReports)
}

func TestSaveReportDefinition(t *testing.T) {
	server, controller := newTestServer()
	defer server.Close()

	body := []byte(`{"id":"r1","name":"Devices"}`)
	req, _ := http.NewRequest(http.MethodPut, server.URL+"/api/scheduler/reports/r1.json", bytes.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "r1.json", controller.savedFileName)
	assert.Equal(t, body, controller.savedDefinition)
}

func TestDeleteReportDefinition(t *testing.T) {
	server, controller := newTestServer()
	defer server.Close()

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/scheduler/reports/r1.json", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "r1.json", controller.deletedFileName)
}

func TestSaveReportsIndex(t *testing.T) {
	server, controller := newTestServer()
	defer server.Close()

	body := []byte(`{"reports":[]}`)
	req, _ := http.NewRequest(http.MethodPut, server.URL+"/api/scheduler/index", bytes.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, body, controller.savedIndex)
}

func TestOperationLifecycle(t *testing.T) {
	server, _ := newTestServer()
	defer server.Close()

	begin := func() int {
		resp, err := http.Post(server.URL+"/api/operations/enroll/begin", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, begin())
	assert.Equal(t, http.StatusConflict, begin(), "a second begin while held must be refused")

	resp, err := http.Post(server.URL+"/api/operations/enroll/end", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusOK, begin(), "begin must succeed again after end")
}

func TestBeginOperationRejectsBadTimeout(t *testing.T) {
	server, _ := newTestServer()
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/operations/enroll/begin?timeout=banana", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

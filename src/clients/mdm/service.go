package mdm

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"reporter/src/config"
	"reporter/src/models"
	requests "reporter/src/utils/requests"
)

// Client is the surface the execution pipeline needs from the
// device-management API.
type Client interface {
	CreateExportJob(ctx context.Context, req ExportRequest) (string, error)
	GetExportJob(ctx context.Context, jobID string) (*models.ExportJob, error)
	Download(ctx context.Context, downloadURL string) ([]byte, error)
}

// ServiceClient is a struct that uses ExternalAPIService to interact with the MDM API
type ServiceClient struct {
	API *requests.ExternalAPIService
}

// NewClient creates a new instance of ServiceClient
func NewClient(cfg *config.MDMConfig) *ServiceClient {
	api := requests.NewExternalAPIService(cfg.BaseURL, cfg.TokenURL, cfg.ClientID, cfg.ClientSecret)
	return &ServiceClient{API: api}
}

// CreateExportJob submits an export and returns the remote job ID.
func (s *ServiceClient) CreateExportJob(ctx context.Context, req ExportRequest) (string, error) {
	resp, err := s.API.Post(ctx, "/v1/exports", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result createExportResponse
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if err := json.Unmarshal(responseBody, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("export job created without an id")
	}

	return result.ID, nil
}

// GetExportJob retrieves the current status of an export job.
func (s *ServiceClient) GetExportJob(ctx context.Context, jobID string) (*models.ExportJob, error) {
	resp, err := s.API.Get(ctx, "/v1/exports/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result exportStatusResponse
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(responseBody, &result); err != nil {
		return nil, err
	}

	return &models.ExportJob{
		ID:          result.ID,
		Status:      parseExportStatus(result.Status),
		DownloadURL: result.DownloadURL,
		Error:       result.Error,
	}, nil
}

// Download fetches the export archive from its download handle.
func (s *ServiceClient) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	return s.API.GetRaw(ctx, downloadURL)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"reporter/src/config"
	"reporter/src/models"
	"reporter/src/utils"
	aws_handler "reporter/src/utils/aws"
)

// ErrUnknownStorageConfig marks a delivery that references a storage
// configuration name the service does not know. It is deliberately a
// different failure than a transport or auth error during upload.
var ErrUnknownStorageConfig = errors.New("unknown storage configuration")

// DefaultFileNameTemplate is used when a report does not set one.
const DefaultFileNameTemplate = "{reportName}-{date}-{time}.{extension}"

// StorageHandlerI is the slice of the S3 handler the upload path needs.
type StorageHandlerI interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
	PresignDownload(key string, expire time.Duration) (string, error)
}

type UploadResult struct {
	Key  string
	Link string
}

// UploadService resolves named storage configurations and delivers
// report payloads to them.
type UploadService struct {
	configurations map[string]config.StorageConfiguration
	newHandler     func(context.Context, config.StorageConfiguration) (StorageHandlerI, error)
}

func NewUploadService(cfg config.StorageConfig, aws *aws_handler.AWSHandler) *UploadService {
	configurations := make(map[string]config.StorageConfiguration, len(cfg.Configurations))
	for _, c := range cfg.Configurations {
		configurations[c.Name] = c
	}
	return &UploadService{
		configurations: configurations,
		newHandler: func(ctx context.Context, c config.StorageConfiguration) (StorageHandlerI, error) {
			return aws.NewStorageHandler(ctx, c)
		},
	}
}

// NewUploadServiceWithHandler wires a prebuilt handler factory; used by
// tests to avoid touching real storage.
func NewUploadServiceWithHandler(cfg config.StorageConfig, factory func(context.Context, config.StorageConfiguration) (StorageHandlerI, error)) *UploadService {
	configurations := make(map[string]config.StorageConfiguration, len(cfg.Configurations))
	for _, c := range cfg.Configurations {
		configurations[c.Name] = c
	}
	return &UploadService{configurations: configurations, newHandler: factory}
}

// UploadReport stores the payload under the report's templated object
// key and, when requested, returns a time-limited download link.
func (s *UploadService) UploadReport(ctx context.Context, report *models.ScheduledReport, tc utils.TemplateContext, payload []byte) (*UploadResult, error) {
	storageCfg, ok := s.configurations[report.Delivery.StorageConfig]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorageConfig, report.Delivery.StorageConfig)
	}

	handler, err := s.newHandler(ctx, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing storage %s: %w", storageCfg.Name, err)
	}

	fileTemplate := report.Delivery.FileNameTemplate
	if fileTemplate == "" {
		fileTemplate = DefaultFileNameTemplate
	}
	key := utils.RenderTemplate(fileTemplate, tc)
	if folder := utils.RenderTemplate(report.Delivery.FolderTemplate, tc); folder != "" {
		key = path.Join(folder, key)
	}

	storedKey, err := handler.Upload(ctx, key, payload, contentTypeFor(report.Format))
	if err != nil {
		return nil, fmt.Errorf("uploading to %s: %w", storageCfg.Name, err)
	}

	result := &UploadResult{Key: storedKey}
	if report.Delivery.ShareLink {
		expire := time.Duration(report.Delivery.ShareLinkExpireDays) * 24 * time.Hour
		if expire <= 0 || expire > aws_handler.MaxPresignExpiry {
			utils.LoggerFromContext(ctx).WithField("requested_days", report.Delivery.ShareLinkExpireDays).
				Warn("share link expiration clamped to storage maximum")
			expire = aws_handler.MaxPresignExpiry
		}
		link, err := handler.PresignDownload(storedKey, expire)
		if err != nil {
			// The artifact is already stored; a broken link is logged,
			// not treated as a failed delivery.
			utils.LoggerFromContext(ctx).WithError(err).Warn("could not presign download link")
		} else {
			result.Link = link
		}
	}
	return result, nil
}

func contentTypeFor(format models.ReportFormat) string {
	switch format {
	case models.FormatJSON:
		return "application/json"
	default:
		return "text/csv"
	}
}

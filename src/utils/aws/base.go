package aws_handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/secretsmanager"

	"reporter/src/config"
)

type AWSHandler struct {
	SecretManager *SecretManager
}

func NewAWSHandler(region string) (*AWSHandler, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region)},
	)

	if err != nil {
		return nil, err
	}

	svc := secretsmanager.New(sess)
	secretManager := NewSecretManager(svc)

	return &AWSHandler{
		SecretManager: secretManager,
	}, nil
}

type storedCredentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
}

// NewStorageHandler builds an S3 handler for a named storage
// configuration, resolving credentials according to its auth mode.
func (h *AWSHandler) NewStorageHandler(ctx context.Context, cfg config.StorageConfiguration) (*StorageHandler, error) {
	var creds *credentials.Credentials

	switch cfg.AuthMode {
	case "sharedKey":
		creds = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	case "sessionToken":
		creds = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
	case "secretRef":
		secret, err := h.SecretManager.GetSecretValue(ctx, cfg.SecretRef)
		if err != nil {
			return nil, fmt.Errorf("resolving secret %s: %w", cfg.SecretRef, err)
		}
		var stored storedCredentials
		if err := json.Unmarshal([]byte(secret), &stored); err != nil {
			return nil, fmt.Errorf("decoding secret %s: %w", cfg.SecretRef, err)
		}
		creds = credentials.NewStaticCredentials(stored.AccessKeyID, stored.SecretAccessKey, "")
	default:
		return nil, fmt.Errorf("unsupported auth mode %q for storage configuration %s", cfg.AuthMode, cfg.Name)
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: creds,
	})
	if err != nil {
		return nil, err
	}

	return NewStorageHandler(s3.New(sess), cfg.Bucket, cfg.Prefix), nil
}

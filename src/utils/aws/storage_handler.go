package aws_handler

import (
	"bytes"
	"context"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
)

// MaxPresignExpiry is the longest link lifetime S3 will honor.
const MaxPresignExpiry = 7 * 24 * time.Hour

type StorageHandler struct {
	svc    *s3.S3
	bucket string
	prefix string
}

func NewStorageHandler(svc *s3.S3, bucket, prefix string) *StorageHandler {
	return &StorageHandler{svc: svc, bucket: bucket, prefix: prefix}
}

// Upload writes the payload under the configured prefix and returns
// the object key it was stored at.
func (s *StorageHandler) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	fullKey := path.Join(s.prefix, key)

	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return fullKey, nil
}

// PresignDownload returns a time-limited GET link for an uploaded
// object. Expirations beyond the S3 maximum are clamped by the caller.
func (s *StorageHandler) PresignDownload(key string, expire time.Duration) (string, error) {
	req, _ := s.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return req.Presign(expire)
}

package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/FaizanHaider108/lookvisa/internal/config"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const attachmentPrefix = "attachments"

// S3Storage keeps listing attachments in a MinIO (S3 compatible) bucket.
type S3Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

func NewS3Storage(ctx context.Context, cfg *config.MinIOConfig, log *logger.Logger) (*S3Storage, error) {
	log = log.Named("s3_storage")
	log.Info("Initializing MinIO storage",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
		zap.Bool("use_ssl", cfg.UseSSL))

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	s := &S3Storage{client: client, bucket: cfg.Bucket, logger: log}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *S3Storage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		s.logger.Info("Bucket already exists", zap.String("bucket", s.bucket))
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to make bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Bucket created", zap.String("bucket", s.bucket))
	return nil
}

// ObjectKey builds the storage key for an uploaded file, keeping its extension.
func ObjectKey(originalFileName string) string {
	ext := strings.ToLower(filepath.Ext(originalFileName))
	return fmt.Sprintf("%s/%s%s", attachmentPrefix, uuid.New().String(), ext)
}

func (s *S3Storage) Upload(ctx context.Context, originalFileName string, data []byte) (string, error) {
	objectKey := ObjectKey(originalFileName)
	contentType := http.DetectContentType(data)

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": filepath.Base(originalFileName)},
	})
	if err != nil {
		s.logger.Error("S3Storage.Upload: PutObject failed",
			zap.String("bucket", s.bucket), zap.String("key", objectKey), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	s.logger.Info("S3Storage.Upload: file uploaded",
		zap.String("key", info.Key),
		zap.String("content_type", contentType),
		zap.Int64("size", info.Size))
	return s.objectURL(objectKey), nil
}

// Delete removes an object by the URL Upload returned, or by its bare key.
func (s *S3Storage) Delete(ctx context.Context, ref string) error {
	key := s.keyFromRef(ref)
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	s.logger.Debug("S3Storage.Delete: object removed", zap.String("key", key))
	return nil
}

func (s *S3Storage) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.client.EndpointURL().String(), "/"), s.bucket, key)
}

func (s *S3Storage) keyFromRef(ref string) string {
	prefix := strings.TrimRight(s.client.EndpointURL().String(), "/") + "/" + s.bucket + "/"
	if strings.HasPrefix(ref, prefix) {
		return strings.TrimPrefix(ref, prefix)
	}
	return strings.TrimPrefix(path.Clean("/"+ref), "/")
}

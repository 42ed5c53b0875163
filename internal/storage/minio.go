package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prediag/inference-service/internal/config"
)

// RadiographStore keeps uploaded X-ray images in a MinIO bucket, keyed by
// prediagnostic id.
type RadiographStore struct {
	client *minio.Client
	bucket string
}

// NewRadiographStore creates the MinIO client and ensures the bucket exists.
func NewRadiographStore(cfg config.MinIOConfig) (*RadiographStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &RadiographStore{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

func (s *RadiographStore) key(prediagnosticID, format string) string {
	return fmt.Sprintf("radiographs/%s.%s", prediagnosticID, format)
}

// Store uploads the original radiograph bytes and returns a presigned GET
// URL the review UI can load directly.
func (s *RadiographStore) Store(ctx context.Context, prediagnosticID, format string, reader io.Reader, size int64, contentType string, urlTTL time.Duration) (string, error) {
	key := s.key(prediagnosticID, format)
	if _, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("minio put: %w", err)
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, urlTTL, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("minio presign: %w", err)
	}
	return presigned.String(), nil
}

// Fetch returns a ReadCloser for a stored radiograph.
func (s *RadiographStore) Fetch(ctx context.Context, prediagnosticID, format string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(prediagnosticID, format), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// stat to surface "not found" before the caller reads
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

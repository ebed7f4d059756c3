// Package storage uploads post images and avatars to an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"yatube/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrDisabled is returned by a nil ImageStore.
var ErrDisabled = errors.New("image storage is not configured")

// Object prefixes, one per kind of upload.
const (
	PostImages = "posts"
	Avatars    = "users"
)

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

type ImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *slog.Logger
}

// New connects to MinIO. It returns a nil store when cfg.Endpoint is empty.
func New(cfg config.StorageConfig, logger *slog.Logger) (*ImageStore, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &ImageStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.With("component", "image_store"),
	}, nil
}

func (s *ImageStore) Enabled() bool { return s != nil && s.client != nil }

// EnsureBucket creates the bucket on first start.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("created bucket", "bucket", s.bucket)
	return nil
}

// ObjectName builds a collision-free object name that keeps the upload's
// extension. It fails for extensions that are not images.
func ObjectName(prefix, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	return prefix + "/" + uuid.New().String() + ext, nil
}

// Put uploads the image and returns the object name stored on the model.
func (s *ImageStore) Put(ctx context.Context, prefix, filename string, body io.Reader, size int64, contentType string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	objectName, err := ObjectName(prefix, filename)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, s.bucket, objectName, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	s.logger.Debug("uploaded image", "object", objectName, "size", size)
	return objectName, nil
}

// URL is where clients fetch objectName from.
func (s *ImageStore) URL(objectName string) string {
	if !s.Enabled() || objectName == "" {
		return ""
	}
	return s.publicURL + "/" + objectName
}

func (s *ImageStore) Remove(ctx context.Context, objectName string) error {
	if !s.Enabled() || objectName == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", objectName, err)
	}
	return nil
}

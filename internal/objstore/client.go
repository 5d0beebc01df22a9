// Package objstore stores complaint photos in MinIO-compatible object storage.
package objstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ecocampus/complaint-service/internal/config"
)

// MaxPhotoSize bounds uploaded complaint photos.
const MaxPhotoSize = 5 * 1024 * 1024

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// PhotoStore persists complaint photos. A nil *Client satisfies it and
// reports itself disabled, in which case photos stay inline on the record.
type PhotoStore interface {
	Enabled() bool
	Upload(ctx context.Context, data []byte, contentType string) (key string, err error)
	Delete(ctx context.Context, key string) error
}

// Client wraps the MinIO SDK for a single photo bucket.
type Client struct {
	mc     *minio.Client
	bucket string
}

// NewClient creates the client, or nil when no endpoint is configured.
func NewClient(cfg config.ObjectStoreConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("object store access_key and secret_key are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return &Client{mc: mc, bucket: cfg.Bucket}, nil
}

// Enabled reports whether uploads go to object storage.
func (c *Client) Enabled() bool {
	return c != nil && c.mc != nil
}

// EnsureBucket creates the photo bucket when missing.
func (c *Client) EnsureBucket(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Upload validates and stores a photo, returning its storage key.
func (c *Client) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("object store not configured")
	}
	if err := ValidatePhoto(data, contentType); err != nil {
		return "", err
	}
	key := "photos/" + uuid.NewString()
	_, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

// Delete removes a stored photo. Used by purge.
func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.Enabled() || key == "" {
		return nil
	}
	return c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
}

// ValidatePhoto enforces size and format limits shared by both backends.
func ValidatePhoto(data []byte, contentType string) error {
	if len(data) == 0 {
		return fmt.Errorf("photo payload is empty")
	}
	if len(data) > MaxPhotoSize {
		return fmt.Errorf("photo exceeds the maximum size of 5MB")
	}
	if !allowedMimeTypes[contentType] {
		return fmt.Errorf("photo format %q not allowed; use JPEG, PNG or WebP", contentType)
	}
	return nil
}

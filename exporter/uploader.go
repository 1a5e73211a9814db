// exporter/uploader.go
package exporter

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gewnthar/flightscrape/config"
	"github.com/gewnthar/flightscrape/logging"
)

// Uploader pushes an exported file somewhere durable and returns its location.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// S3Uploader uploads to an S3-compatible bucket.
type S3Uploader struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3Uploader connects to the object store described by cfg. The bucket
// is created on first use if it does not exist.
func NewS3Uploader(cfg config.ObjectStoreConfig) (*S3Uploader, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("object store endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client for %s: %w", cfg.Endpoint, err)
	}
	return &S3Uploader{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// ObjectName is the key a local file is stored under.
func (u *S3Uploader) ObjectName(localPath string) string {
	return ObjectKey(u.prefix, localPath)
}

// ObjectKey joins prefix and the file's base name with forward slashes.
func ObjectKey(prefix, localPath string) string {
	prefix = strings.Trim(prefix, "/")
	name := filepath.Base(localPath)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Upload implements Uploader.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check bucket %s: %w", u.bucket, err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create bucket %s: %w", u.bucket, err)
		}
		logging.L().Infof("Exporter: created bucket %s", u.bucket)
	}

	key := u.ObjectName(localPath)
	info, err := u.client.FPutObject(ctx, u.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: ContentType(localPath),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to %s/%s: %w", localPath, u.bucket, key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", info.Bucket, info.Key)
	logging.L().Infof("Exporter: uploaded %s (%d bytes) to %s", localPath, info.Size, location)
	return location, nil
}

// ContentType picks a MIME type from the export file extension.
func ContentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

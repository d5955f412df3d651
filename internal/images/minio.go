package images

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/nexustopic/autoblog/internal/config"
	"github.com/nexustopic/autoblog/internal/logger"
)

// MinioUploader stores generated cover images in an S3-compatible bucket
// and hands back a public URL.
type MinioUploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioUploader(cfg *config.Config) (*MinioUploader, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := cfg.MinioPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}

	return &MinioUploader{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: publicURL,
	}, nil
}

func (u *MinioUploader) ensureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	logger.Info("Created storage bucket", "bucket", u.bucket)
	return nil
}

// Upload writes the object and returns its public URL.
func (u *MinioUploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := u.ensureBucket(ctx); err != nil {
		return "", err
	}

	_, err := u.client.PutObject(ctx, u.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	url := fmt.Sprintf("%s/%s", u.publicURL, name)
	logger.Info("Image uploaded", "name", name, "size", len(data), "url", url)
	return url, nil
}

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	appconfig "github.com/semmidev/ckptsync/internal/config"
	"github.com/semmidev/ckptsync/internal/domain"
)

type MinioStorage struct {
	client *minio.Client
	bucket string
}

var _ domain.ObjectStore = (*MinioStorage)(nil)

// NewMinio connects to a MinIO or other S3-compatible endpoint. A scheme on
// the endpoint overrides use_ssl.
func NewMinio(cfg *appconfig.StorageConfig, bucket string) (*MinioStorage, error) {
	endpoint, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioStorage{client: client, bucket: bucket}, nil
}

func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	default:
		return strings.TrimSuffix(endpoint, "/"), useSSL
	}
}

func (m *MinioStorage) Upload(ctx context.Context, localPath string, key string) error {
	_, err := m.client.FPutObject(ctx, m.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: detectContentType(localPath),
	})
	if err != nil {
		return domain.NewRemoteError("upload", m.bucket, key, err)
	}
	return nil
}

func (m *MinioStorage) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, domain.NewRemoteError("list", m.bucket, "", obj.Err)
		}
		keys = append(keys, obj.Key)
	}

	return keys, nil
}

// DeleteBatch streams keys to RemoveObjects, which batches them into
// multi-object delete requests.
func (m *MinioStorage) DeleteBatch(ctx context.Context, keys []string) (int, error) {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	failed := make(map[string]string)
	for rErr := range m.client.RemoveObjects(ctx, m.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed[rErr.ObjectName] = rErr.Err.Error()
	}

	deleted := len(keys) - len(failed)
	if len(failed) > 0 {
		return deleted, &domain.DeleteError{Bucket: m.bucket, Failed: failed}
	}
	return deleted, nil
}

func (m *MinioStorage) Describe() string {
	return fmt.Sprintf("minio://%s/%s", m.client.EndpointURL().Host, m.bucket)
}

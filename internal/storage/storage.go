package storage

import (
	"context"

	"github.com/andresuchdata/supplyflow/internal/config"
)

// ObjectInfo represents metadata for a stored export.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the plan exporter needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	UploadObject(ctx context.Context, key string, data []byte) error
}

// New picks MinIO/S3 when an endpoint is configured and the local export directory otherwise.
func New(cfg config.ExportConfig) (ObjectStorage, error) {
	if cfg.Endpoint != "" {
		return NewMinioClient(MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		})
	}
	return NewLocalStorage(cfg.Dir)
}

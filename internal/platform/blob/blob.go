// Package blob stores employee photos. The memory driver inlines objects as
// data URIs; the s3 driver writes to an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"

	"kpiteam/internal/platform/config"
)

const (
	DriverMemory = "memory"
	DriverS3     = "s3"
)

var ErrNotFound = errors.New("blob not found")

// Store persists an object and returns the URL clients should use for it.
type Store interface {
	Driver() string
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

// FromConfig opens the store selected by PHOTO_DRIVER.
func FromConfig(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.PhotoDriver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    cfg.PhotoS3Bucket,
			Region:    cfg.PhotoS3Region,
			Endpoint:  cfg.PhotoS3Endpoint,
			PathStyle: cfg.PhotoS3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown photo driver %q", cfg.PhotoDriver)
	}
}

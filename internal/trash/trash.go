package trash

import (
	"context"
	"fmt"

	"github.com/aliskhannn/image-compressor/internal/config"
)

// Trasher moves a file somewhere it can be recovered from.
type Trasher interface {
	Trash(ctx context.Context, path string) error
}

// New builds the trash backend selected in cfg.
func New(ctx context.Context, cfg config.Trash, storage config.Storage) (Trasher, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal()
	case "bucket":
		return NewBucket(ctx, storage.Endpoint, storage.AccessKey, storage.SecretKey, storage.BucketName, cfg.Prefix, storage.UseSSL)
	default:
		return nil, fmt.Errorf("unknown trash backend %q", cfg.Backend)
	}
}

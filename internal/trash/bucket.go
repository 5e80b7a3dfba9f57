package trash

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/zlog"
)

// objectStore is the part of the MinIO client the bucket trash uses.
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Bucket keeps trashed originals in an S3-compatible bucket and removes the
// local copy once the upload succeeded.
type Bucket struct {
	client     objectStore
	bucketName string
	prefix     string
	now        func() time.Time
}

// NewBucket connects to the MinIO server at endpoint.
// If the bucket does not exist, it will be created automatically.
func NewBucket(ctx context.Context, endpoint, accessKey, secretKey, bucketName, prefix string, useSSL bool) (*Bucket, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return newBucket(client, bucketName, prefix), nil
}

func newBucket(client objectStore, bucketName, prefix string) *Bucket {
	return &Bucket{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
		now:        time.Now,
	}
}

// Trash uploads the file at p to prefix/<date>/<uuid>/<name> and removes it.
// The file is left in place when the upload fails.
func (b *Bucket) Trash(ctx context.Context, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", p, err)
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(p); err == nil {
		contentType = mt.String()
	}

	objectName := path.Join(b.prefix, b.now().UTC().Format("2006-01-02"), uuid.NewString(), filepath.Base(p))

	_, err = b.client.PutObject(ctx, b.bucketName, objectName, f, st.Size(), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-path": p,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", p, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", p, err)
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("failed to remove %s after upload: %w", p, err)
	}

	zlog.Logger.Debug().Str("path", p).Str("object", objectName).Msg("moved to bucket trash")
	return nil
}

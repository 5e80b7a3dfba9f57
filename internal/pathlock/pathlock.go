// Package pathlock serializes work on the same source path across
// goroutines and processes with advisory file locks.
package pathlock

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const retryDelay = 50 * time.Millisecond

// Locker hands out one lock per absolute source path.
type Locker struct {
	dir string
}

// New creates a Locker keeping its lock files in dir. An empty dir uses a
// directory under os.TempDir().
func New(dir string) *Locker {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "image-compressor-locks")
	}
	return &Locker{dir: dir}
}

// Lock blocks until path is locked or ctx is done. The returned function
// releases the lock.
func (l *Locker) Lock(ctx context.Context, path string) (func(), error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	if err := os.MkdirAll(l.dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	sum := sha1.Sum([]byte(abs))
	fl := flock.New(filepath.Join(l.dir, hex.EncodeToString(sum[:])+".lock"))

	ok, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("failed to lock %s: %w", path, ctx.Err())
	}

	return func() { _ = fl.Unlock() }, nil
}

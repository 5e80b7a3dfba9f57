// Package trash moves files out of the way without deleting them, either to
// the desktop trash of the current user or to an object-storage bucket.
package trash

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Bios-Marcel/wastebasket/v2"
	"github.com/wb-go/wbf/zlog"
)

// Local moves files into the system trash of the current user: the
// freedesktop.org Trash on Linux and BSDs, the Finder trash on macOS and the
// Recycle Bin on Windows.
type Local struct {
	trash func(path string) error
}

// NewLocal returns a Local backed by the system trash.
func NewLocal() (*Local, error) {
	return &Local{trash: func(path string) error { return wastebasket.Trash(path) }}, nil
}

// Trash moves path into the system trash. A missing path is an error.
func (l *Local) Trash(_ context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if _, err := os.Lstat(abs); err != nil {
		return fmt.Errorf("failed to trash %s: %w", path, err)
	}

	if err := l.trash(abs); err != nil {
		return fmt.Errorf("failed to trash %s: %w", path, err)
	}

	zlog.Logger.Debug().Str("path", abs).Msg("moved to trash")
	return nil
}

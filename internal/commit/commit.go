// Package commit replaces or writes output files once an encoded image is
// known to be worth keeping. The original is never removed before the
// replacement is fully staged next to it, and only ever goes to the trash.
package commit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aliskhannn/image-compressor/internal/model"
	"github.com/aliskhannn/image-compressor/internal/outpath"
)

// SavingsThreshold is the largest output/original size ratio accepted for a
// run that does not convert formats.
const SavingsThreshold = 0.95

// trasher moves a file to a recoverable location.
type trasher interface {
	Trash(ctx context.Context, path string) error
}

// Manager commits encoded images to disk.
type Manager struct {
	trash trasher
}

// NewManager creates a Manager that sends replaced originals to t.
func NewManager(t trasher) *Manager {
	return &Manager{trash: t}
}

// CheckOverwrite fails with WontOverwrite when outPath is the source itself
// and the profile does not allow overwriting.
func CheckOverwrite(sourcePath, outPath string, p model.Profile) error {
	if samePath(sourcePath, outPath) && !p.Overwrite {
		return model.Errorf(model.KindWontOverwrite, "%s would be overwritten, enable overwrite to allow this", sourcePath)
	}
	return nil
}

// Worthwhile reports whether an output of outSize bytes is small enough
// compared to originalSize. Conversions are always worthwhile.
func Worthwhile(outSize, originalSize int64, converted bool) bool {
	return converted || float64(outSize) <= float64(originalSize)*SavingsThreshold
}

// Commit writes data to outPath.
//
// The bytes are staged in a hidden sibling of outPath first. When outPath is
// the source, the source is trashed before the staged file is moved into
// place; if trashing fails the staged file is discarded and the source stays
// untouched. A different file already at outPath is removed.
func (m *Manager) Commit(ctx context.Context, data []byte, src model.SourceFile, outPath string, p model.Profile, converted bool) (model.Result, error) {
	if err := CheckOverwrite(src.Path, outPath, p); err != nil {
		return model.Result{}, err
	}

	outSize := int64(len(data))
	if !Worthwhile(outSize, src.Size, converted) {
		return model.Result{}, model.Errorf(model.KindNotSmaller, "%s cannot be compressed further (%d of %d bytes)", src.Path, outSize, src.Size)
	}

	perm := fs.FileMode(0o644)
	if st, err := os.Stat(src.Path); err == nil {
		perm = st.Mode().Perm()
	}

	staging := outpath.Staging(outPath)
	if err := writeSynced(staging, data, perm); err != nil {
		_ = os.Remove(staging)
		return model.Result{}, model.NewError(model.KindUnknown, fmt.Errorf("failed to stage %s: %w", outPath, err))
	}

	if samePath(src.Path, outPath) {
		if err := m.trash.Trash(ctx, src.Path); err != nil {
			_ = os.Remove(staging)
			return model.Result{}, model.NewError(model.KindUnknown, fmt.Errorf("failed to trash %s: %w", src.Path, err))
		}
	} else if err := os.Remove(outPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_ = os.Remove(staging)
		return model.Result{}, model.NewError(model.KindUnknown, fmt.Errorf("failed to remove existing %s: %w", outPath, err))
	}

	if err := os.Rename(staging, outPath); err != nil {
		_ = os.Remove(staging)
		return model.Result{}, model.NewError(model.KindUnknown, fmt.Errorf("failed to move %s into place: %w", outPath, err))
	}

	if p.KeepTimestamps {
		if err := restoreTimes(outPath, src); err != nil {
			return model.Result{}, model.NewError(model.KindUnknown, fmt.Errorf("failed to restore timestamps of %s: %w", outPath, err))
		}
	}

	return model.Result{
		Path:         src.Path,
		OutPath:      outPath,
		OutSize:      outSize,
		OriginalSize: src.Size,
		Converted:    converted,
		Status:       model.StatusSuccess,
	}, nil
}

// restoreTimes gives path the access, modification and, where the platform
// allows setting it, creation time of the source. Linux has no call to set a
// creation time, so there the new file keeps the one it was given.
func restoreTimes(path string, src model.SourceFile) error {
	if src.Modified.IsZero() {
		return nil
	}
	atime := src.Accessed
	if atime.IsZero() {
		atime = src.Modified
	}
	if err := os.Chtimes(path, atime, src.Modified); err != nil {
		return err
	}
	if src.Created.IsZero() {
		return nil
	}
	return setCreationTime(path, src.Created)
}

func writeSynced(path string, data []byte, perm fs.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

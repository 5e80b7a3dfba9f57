// Package scan discovers candidate images below a set of roots.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-compressor/internal/outpath"
)

// Extensions is the allow-list of file extensions considered images.
var Extensions = []string{"png", "jpeg", "jpg", "gif", "webp", "tiff", "avif"}

// IsCandidate reports whether path has an allowed extension and is not a
// staging file.
func IsCandidate(path string) bool {
	if outpath.IsStaging(path) {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Walk calls fn for every candidate file below roots, in lexical order per
// root. A root may itself be a file. Directories that cannot be read are
// skipped; an error returned by fn stops the walk and is returned.
func Walk(roots []string, fn func(path string) error) error {
	for _, root := range roots {
		st, err := os.Stat(root)
		if err != nil {
			zlog.Logger.Warn().Err(err).Str("path", root).Msg("skipping unreadable path")
			continue
		}

		if !st.IsDir() {
			if IsCandidate(root) {
				if err := fn(root); err != nil {
					return err
				}
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				zlog.Logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() || !IsCandidate(path) {
				return nil
			}
			return fn(path)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Collect returns every candidate below roots.
func Collect(roots []string) ([]string, error) {
	var paths []string
	err := Walk(roots, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// Package outpath derives output and staging paths for a compression run.
// Everything here is pure string manipulation; nothing touches the filesystem.
package outpath

import (
	"path/filepath"
	"strings"

	"github.com/aliskhannn/image-compressor/internal/format"
	"github.com/aliskhannn/image-compressor/internal/model"
)

// Resolve returns the path the compressed image is written to.
//
// The current extension is kept when it is one the detected format accepts,
// otherwise it is repaired to the format's preferred one. A requested
// conversion replaces it with the target's preferred extension. The postfix,
// when enabled, goes between the stem and the extension.
func Resolve(p model.Profile, sourcePath string, detected format.Format) string {
	ext := filepath.Ext(sourcePath)
	stem := strings.TrimSuffix(sourcePath, ext)

	original := strings.TrimPrefix(ext, ".")
	if !detected.Accepts(original) {
		original = detected.PreferredExtension()
	}

	final := original
	if p.ConvertEnabled {
		final = p.ConvertFormat.PreferredExtension()
	}

	postfix := ""
	if p.PostfixEnabled {
		postfix = p.Postfix
	}

	return stem + postfix + "." + final
}

// Staging returns the hidden sibling the encoded bytes are written to before
// being moved into place: /dir/name.png -> /dir/.name.png.
func Staging(outPath string) string {
	dir, name := filepath.Split(outPath)
	return filepath.Join(dir, "."+name)
}

// IsStaging reports whether path looks like a staging file.
func IsStaging(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// Package format describes the closed set of raster formats the compressor
// understands and detects them from file content.
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnknownFormat is returned when content matches none of the supported signatures.
var ErrUnknownFormat = errors.New("unsupported image format")

// Format is one of the supported raster formats. The zero value is not a valid format.
type Format uint8

const (
	JPEG Format = iota + 1
	PNG
	WEBP
	GIF
	TIFF
	AVIF
)

// All lists every supported format in declaration order.
var All = []Format{JPEG, PNG, WEBP, GIF, TIFF, AVIF}

type traits struct {
	name       string
	mime       string
	extensions []string // first entry is the preferred extension
	native     bool     // handled by the shared lossy/lossless engine
}

var table = map[Format]traits{
	JPEG: {name: "jpeg", mime: "image/jpeg", extensions: []string{"jpg", "jpeg"}, native: true},
	PNG:  {name: "png", mime: "image/png", extensions: []string{"png"}, native: true},
	WEBP: {name: "webp", mime: "image/webp", extensions: []string{"webp"}, native: true},
	GIF:  {name: "gif", mime: "image/gif", extensions: []string{"gif"}, native: true},
	TIFF: {name: "tiff", mime: "image/tiff", extensions: []string{"tiff", "tif"}, native: true},
	AVIF: {name: "avif", mime: "image/avif", extensions: []string{"avif"}, native: false},
}

// Valid reports whether f is one of the declared formats.
func (f Format) Valid() bool {
	_, ok := table[f]
	return ok
}

func (f Format) String() string {
	if t, ok := table[f]; ok {
		return t.name
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// MIME returns the canonical media type.
func (f Format) MIME() string {
	return table[f].mime
}

// Extensions returns the accepted filename extensions, without the dot.
func (f Format) Extensions() []string {
	exts := table[f].extensions
	out := make([]string, len(exts))
	copy(out, exts)
	return out
}

// PreferredExtension returns the canonical extension used when a file is
// written in this format or when its current extension has to be repaired.
func (f Format) PreferredExtension() string {
	exts := table[f].extensions
	if len(exts) == 0 {
		return ""
	}
	return exts[0]
}

// Accepts reports whether ext (with or without a leading dot, any case) is an
// accepted extension for f.
func (f Format) Accepts(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range table[f].extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// NativeEngine reports whether the shared lossy/lossless engine can encode f.
// AVIF needs the dedicated encoder.
func (f Format) NativeEngine() bool {
	return table[f].native
}

// Parse resolves a format name or extension ("jpg", "JPEG", ".webp").
func Parse(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	for _, f := range All {
		if s == table[f].name || f.Accepts(s) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown format %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid format %d", uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Detect identifies the format from the leading bytes of data, ignoring any
// filename extension.
func Detect(data []byte) (Format, error) {
	mt := mimetype.Detect(data)
	for _, f := range All {
		if mt.Is(table[f].mime) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, mt.String())
}

package model

import (
	"time"

	"github.com/aliskhannn/image-compressor/internal/format"
)

// SourceFile is the probed input of a single run. It is created once and not
// modified afterwards.
type SourceFile struct {
	Path     string
	Bytes    []byte
	Format   format.Format
	Width    int
	Height   int
	Size     int64
	Modified time.Time
	Created  time.Time
	Accessed time.Time
}

// FileInfo is the lightweight description shown before processing.
type FileInfo struct {
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
	Filename  string `json:"filename"`
}

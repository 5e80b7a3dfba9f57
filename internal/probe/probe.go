// Package probe reads source files, identifies their real format from
// content and decodes them for the pipeline.
package probe

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/aliskhannn/image-compressor/internal/codec"
	"github.com/aliskhannn/image-compressor/internal/format"
	"github.com/aliskhannn/image-compressor/internal/model"
)

// MaxFileSize is the largest file Info describes.
const MaxFileSize = math.MaxUint32

// Probe reads the file at path, detects its format from magic bytes and
// decodes it. The filename extension is ignored. The decoded image is
// returned alongside the source so it is decoded only once per run.
func Probe(path string) (model.SourceFile, *codec.Image, error) {
	st, err := stat(path)
	if err != nil {
		return model.SourceFile{}, nil, err
	}
	// Times are taken before reading, which may move the access time.
	created, accessed := fileTimes(path, st)

	data, err := os.ReadFile(path)
	if err != nil {
		return model.SourceFile{}, nil, readError(path, err)
	}

	f, err := format.Detect(data)
	if err != nil {
		return model.SourceFile{}, nil, model.NewError(model.KindUnsupportedFileType, fmt.Errorf("%s: %w", path, err))
	}

	img, err := codec.DecodeAs(data, f)
	if err != nil {
		return model.SourceFile{}, nil, model.NewError(model.KindUnsupportedFileType, fmt.Errorf("%s: %w", path, err))
	}

	w, h := img.Size()
	src := model.SourceFile{
		Path:     path,
		Bytes:    data,
		Format:   f,
		Width:    w,
		Height:   h,
		Size:     int64(len(data)),
		Modified: st.ModTime(),
		Created:  created,
		Accessed: accessed,
	}

	return src, img, nil
}

// Info describes the file at path without reading its content.
func Info(path string) (model.FileInfo, error) {
	st, err := stat(path)
	if err != nil {
		return model.FileInfo{}, err
	}

	if st.Size() > MaxFileSize {
		return model.FileInfo{}, model.Errorf(model.KindFileTooLarge, "%s is %d bytes", path, st.Size())
	}

	return model.FileInfo{
		Size:      st.Size(),
		Extension: strings.TrimPrefix(filepath.Ext(path), "."),
		Filename:  filepath.Base(path),
	}, nil
}

func stat(path string) (fs.FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, readError(path, err)
	}
	if !st.Mode().IsRegular() {
		return nil, model.Errorf(model.KindFileNotFound, "%s is not a regular file", path)
	}
	return st, nil
}

func readError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewError(model.KindFileNotFound, err)
	}
	return model.NewError(model.KindUnknown, fmt.Errorf("failed to read %s: %w", path, err))
}

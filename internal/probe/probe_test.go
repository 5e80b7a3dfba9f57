package probe

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/image-compressor/internal/format"
	"github.com/aliskhannn/image-compressor/internal/model"
)

func writePNG(t *testing.T, path string, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	img.Set(0, 0, color.White)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return buf.Bytes()
}

func TestProbeDetectsByContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	data := writePNG(t, path, 12, 7)

	src, img, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, format.PNG, src.Format)
	assert.Equal(t, format.PNG, img.Format)
	assert.Equal(t, 12, src.Width)
	assert.Equal(t, 7, src.Height)
	assert.Equal(t, int64(len(data)), src.Size)
	assert.Equal(t, data, src.Bytes)
	assert.Equal(t, path, src.Path)
	assert.WithinDuration(t, time.Now(), src.Modified, time.Minute)
	assert.False(t, src.Created.IsZero())
}

func TestProbeErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := Probe(filepath.Join(dir, "missing.png"))
	assert.Equal(t, model.KindFileNotFound, model.KindOf(err))

	text := filepath.Join(dir, "notes.png")
	require.NoError(t, os.WriteFile(text, []byte("definitely not pixels"), 0o644))
	_, _, err = Probe(text)
	assert.Equal(t, model.KindUnsupportedFileType, model.KindOf(err))

	// valid signature, truncated body
	corrupt := filepath.Join(dir, "corrupt.png")
	data := writePNG(t, corrupt, 20, 20)
	require.NoError(t, os.WriteFile(corrupt, data[:40], 0o644))
	_, _, err = Probe(corrupt)
	assert.Equal(t, model.KindUnsupportedFileType, model.KindOf(err))

	_, _, err = Probe(dir)
	assert.Equal(t, model.KindFileNotFound, model.KindOf(err))
}

func TestSourceTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, path, 4, 4)

	atime := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	mtime := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, atime, mtime))

	src, _, err := Probe(path)
	require.NoError(t, err)
	assert.True(t, src.Modified.Equal(mtime), "modified %s", src.Modified)
	assert.True(t, src.Accessed.Equal(atime), "accessed %s", src.Accessed)
	assert.False(t, src.Created.IsZero())
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.PNG")
	data := writePNG(t, path, 3, 3)

	info, err := Info(path)
	require.NoError(t, err)
	assert.Equal(t, model.FileInfo{Size: int64(len(data)), Extension: "PNG", Filename: "image.PNG"}, info)

	_, err = Info(filepath.Join(t.TempDir(), "nope.png"))
	assert.Equal(t, model.KindFileNotFound, model.KindOf(err))
}

func TestInfoTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.tiff")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxFileSize+1))
	require.NoError(t, f.Close())

	_, err = Info(path)
	assert.Equal(t, model.KindFileTooLarge, model.KindOf(err))
}

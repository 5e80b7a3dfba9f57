package processor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/image-compressor/internal/codec"
	"github.com/aliskhannn/image-compressor/internal/commit"
	"github.com/aliskhannn/image-compressor/internal/format"
	"github.com/aliskhannn/image-compressor/internal/model"
	"github.com/aliskhannn/image-compressor/internal/probe"
	"github.com/aliskhannn/image-compressor/internal/resize"
)

type fakeTrash struct {
	dir   string
	calls int
}

func (f *fakeTrash) Trash(_ context.Context, path string) error {
	f.calls++
	return os.Rename(path, filepath.Join(f.dir, filepath.Base(path)))
}

type fakeLocker struct {
	locked, unlocked []string
	err              error
}

func (f *fakeLocker) Lock(_ context.Context, path string) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.locked = append(f.locked, path)
	return func() { f.unlocked = append(f.unlocked, path) }, nil
}

// fixedEncoder returns n bytes regardless of input.
type fixedEncoder struct{ n int }

func (f fixedEncoder) Encode(*codec.Image, codec.Parameters, format.Format, int) ([]byte, error) {
	return make([]byte, f.n), nil
}

func newPipeline(t *testing.T, l locker) (*Processor, *fakeTrash) {
	t.Helper()
	d := codec.NewDispatcher(2)
	tr := &fakeTrash{dir: t.TempDir()}
	return New(resize.NewEngine(d), d, commit.NewManager(tr), l), tr
}

func photo(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

// writeUncompressedPNG writes a PNG without deflate compression, which
// always leaves room for savings.
func writeUncompressedPNG(t *testing.T, path string, m image.Image) {
	t.Helper()
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	require.NoError(t, enc.Encode(&buf, m))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeJPEG(t *testing.T, path string, m image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, m, &jpeg.Options{Quality: 100}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestProcessCompressesPNG(t *testing.T) {
	l := &fakeLocker{}
	p, _ := newPipeline(t, l)
	path := filepath.Join(t.TempDir(), "shot.png")
	writeUncompressedPNG(t, path, photo(96, 64))

	res, err := p.Process(context.Background(), model.DefaultProfile(), path, 1)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "shot.min.png"), res.OutPath)
	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.False(t, res.Converted)
	assert.Less(t, res.OutSize, res.OriginalSize)
	assert.FileExists(t, path)

	src, _, err := probe.Probe(res.OutPath)
	require.NoError(t, err)
	assert.Equal(t, format.PNG, src.Format)
	assert.Equal(t, 96, src.Width)
	assert.Equal(t, res.OutSize, src.Size)

	assert.Equal(t, []string{path}, l.locked)
	assert.Equal(t, []string{path}, l.unlocked)
}

func TestProcessConvertsJPEGToPNG(t *testing.T) {
	p, _ := newPipeline(t, nil)
	path := filepath.Join(t.TempDir(), "test.jpeg")
	writeJPEG(t, path, photo(40, 30))

	profile := model.DefaultProfile()
	profile.PostfixEnabled = false
	profile.ConvertEnabled = true
	profile.ConvertFormat = format.PNG

	res, err := p.Process(context.Background(), profile, path, 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "test.png"), res.OutPath)
	assert.True(t, res.Converted)

	src, _, err := probe.Probe(res.OutPath)
	require.NoError(t, err)
	assert.Equal(t, format.PNG, src.Format)
}

func TestProcessRepairsExtension(t *testing.T) {
	p, _ := newPipeline(t, nil)
	path := filepath.Join(t.TempDir(), "holiday.jpg")
	writeUncompressedPNG(t, path, photo(64, 64))

	res, err := p.Process(context.Background(), model.DefaultProfile(), path, 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "holiday.min.png"), res.OutPath)
}

func TestProcessResizes(t *testing.T) {
	p, _ := newPipeline(t, nil)
	path := filepath.Join(t.TempDir(), "wide.png")
	writeUncompressedPNG(t, path, photo(300, 200))

	profile := model.DefaultProfile()
	profile.ResizeEnabled = true
	profile.MaxWidth = 100
	profile.MaxHeight = 100

	res, err := p.Process(context.Background(), profile, path, 1)
	require.NoError(t, err)

	src, _, err := probe.Probe(res.OutPath)
	require.NoError(t, err)
	assert.Equal(t, 100, src.Width)
	assert.Equal(t, 67, src.Height)
}

func TestProcessOverwrite(t *testing.T) {
	p, tr := newPipeline(t, nil)
	path := filepath.Join(t.TempDir(), "in-place.png")
	writeUncompressedPNG(t, path, photo(64, 64))

	profile := model.DefaultProfile()
	profile.PostfixEnabled = false

	_, err := p.Process(context.Background(), profile, path, 1)
	require.Error(t, err)
	assert.Equal(t, model.KindWontOverwrite, model.KindOf(err))
	assert.Zero(t, tr.calls)

	profile.Overwrite = true
	res, err := p.Process(context.Background(), profile, path, 1)
	require.NoError(t, err)
	assert.Equal(t, path, res.OutPath)
	assert.Equal(t, 1, tr.calls)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, res.OutSize, info.Size())
}

func TestProcessNotSmaller(t *testing.T) {
	d := codec.NewDispatcher(1)
	path := filepath.Join(t.TempDir(), "tight.png")
	writeUncompressedPNG(t, path, photo(10, 10))
	info, err := os.Stat(path)
	require.NoError(t, err)

	n := int(float64(info.Size()) * 0.96)
	p := New(resize.NewEngine(d), fixedEncoder{n: n}, commit.NewManager(&fakeTrash{dir: t.TempDir()}), nil)

	_, err = p.Process(context.Background(), model.DefaultProfile(), path, 1)
	assert.Equal(t, model.KindNotSmaller, model.KindOf(err))

	profile := model.DefaultProfile()
	profile.ConvertEnabled = true
	profile.ConvertFormat = format.WEBP
	res, err := p.Process(context.Background(), profile, path, 1)
	require.NoError(t, err)
	assert.True(t, res.Converted)
	assert.Equal(t, int64(n), res.OutSize)
}

func TestProcessErrors(t *testing.T) {
	p, _ := newPipeline(t, nil)
	dir := t.TempDir()

	_, err := p.Process(context.Background(), model.DefaultProfile(), filepath.Join(dir, "missing.png"), 1)
	assert.Equal(t, model.KindFileNotFound, model.KindOf(err))

	text := filepath.Join(dir, "readme.png")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))
	_, err = p.Process(context.Background(), model.DefaultProfile(), text, 1)
	assert.Equal(t, model.KindUnsupportedFileType, model.KindOf(err))

	img := filepath.Join(dir, "fill.png")
	writeUncompressedPNG(t, img, photo(20, 20))
	profile := model.DefaultProfile()
	profile.ResizeEnabled = true
	profile.BackgroundFillEnabled = true
	profile.BackgroundFill = "#zzz"
	_, err = p.Process(context.Background(), profile, img, 1)
	assert.Equal(t, model.KindInvalidHexColor, model.KindOf(err))

	locked, _ := newPipeline(t, &fakeLocker{err: errors.New("busy")})
	_, err = locked.Process(context.Background(), model.DefaultProfile(), img, 1)
	assert.Equal(t, model.KindUnknown, model.KindOf(err))
}

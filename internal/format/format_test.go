package format

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 90, A: 255})
		}
	}
	return img
}

func TestDetect(t *testing.T) {
	var pngBuf, jpgBuf, gifBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, sample()))
	require.NoError(t, jpeg.Encode(&jpgBuf, sample(), nil))
	require.NoError(t, gif.Encode(&gifBuf, sample(), nil))

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"png", pngBuf.Bytes(), PNG},
		{"jpeg", jpgBuf.Bytes(), JPEG},
		{"gif", gifBuf.Bytes(), GIF},
		{"tiff", []byte{'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00}, TIFF},
		{"webp", append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 "), make([]byte, 16)...), WEBP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	_, err := Detect([]byte("just some text, not an image"))
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, "jpg", JPEG.PreferredExtension())
	assert.True(t, JPEG.Accepts("JPEG"))
	assert.True(t, JPEG.Accepts(".jpg"))
	assert.False(t, JPEG.Accepts("png"))
	assert.Equal(t, "tiff", TIFF.PreferredExtension())
	assert.True(t, TIFF.Accepts("tif"))

	exts := PNG.Extensions()
	exts[0] = "mutated"
	assert.Equal(t, "png", PNG.PreferredExtension())
}

func TestNativeEngine(t *testing.T) {
	for _, f := range All {
		assert.Equal(t, f != AVIF, f.NativeEngine(), f.String())
	}
}

func TestParseAndText(t *testing.T) {
	f, err := Parse(".JPG")
	require.NoError(t, err)
	assert.Equal(t, JPEG, f)

	_, err = Parse("bmp")
	require.Error(t, err)

	var got Format
	require.NoError(t, got.UnmarshalText([]byte("webp")))
	assert.Equal(t, WEBP, got)

	b, err := AVIF.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "avif", string(b))

	_, err = Format(0).MarshalText()
	require.Error(t, err)
}

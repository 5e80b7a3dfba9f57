package codec

import (
	"github.com/aliskhannn/image-compressor/internal/format"
	"github.com/aliskhannn/image-compressor/internal/model"
)

// Parameters are the codec-facing compression options of one run.
type Parameters struct {
	JPEGQuality int
	PNGQuality  int
	WebPQuality int
	GIFQuality  int
	AVIFQuality int

	// Lossless restricts encoders to lossless optimization.
	Lossless     bool
	KeepMetadata bool

	// Width and Height are a resize request; 0 means none. Resizing happens
	// before dispatch, so NewParameters always leaves them at 0.
	Width  int
	Height int
}

// NewParameters maps a profile onto codec parameters.
func NewParameters(p model.Profile) Parameters {
	return Parameters{
		JPEGQuality:  p.JPEGQuality,
		PNGQuality:   p.PNGQuality,
		WebPQuality:  p.WebPQuality,
		GIFQuality:   p.GIFQuality,
		AVIFQuality:  p.AVIFQuality,
		Lossless:     !p.Lossy,
		KeepMetadata: p.KeepMetadata,
	}
}

// Quality returns the quality configured for f.
func (p Parameters) Quality(f format.Format) int {
	switch f {
	case format.JPEG:
		return p.JPEGQuality
	case format.PNG:
		return p.PNGQuality
	case format.WEBP:
		return p.WebPQuality
	case format.GIF:
		return p.GIFQuality
	case format.AVIF:
		return p.AVIFQuality
	default:
		return 100
	}
}

// MaxQuality returns parameters for re-encoding without visible loss, used
// when an intermediate buffer has to be written back in its own format.
func MaxQuality() Parameters {
	return Parameters{
		JPEGQuality:  100,
		PNGQuality:   100,
		WebPQuality:  100,
		GIFQuality:   100,
		AVIFQuality:  100,
		Lossless:     true,
		KeepMetadata: true,
	}
}

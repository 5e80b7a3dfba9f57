// Package codec decodes source images once and encodes them into any
// supported target format. The shared engine covers JPEG, PNG, WEBP, GIF and
// TIFF; AVIF goes through a dedicated encoder that takes an explicit thread
// budget.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"

	"github.com/disintegration/imaging"
	gavif "github.com/gen2brain/avif"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/webp"

	"github.com/aliskhannn/image-compressor/internal/format"
)

// Image is a decoded source. Stages hand it to each other by pointer and the
// receiving stage owns it; nothing is shared between runs.
type Image struct {
	Format format.Format
	// Frame is the only frame of a still image, or the first frame of an animation.
	Frame image.Image
	// Anim is set for GIFs with more than one frame.
	Anim *gif.GIF
	// Orientation is the EXIF orientation (1-8) of JPEG sources, 1 otherwise.
	Orientation int
	// Segments holds the raw APP1/APP2 marker segments of JPEG sources.
	Segments [][]byte
}

// Animated reports whether the image has more than one frame.
func (i *Image) Animated() bool {
	return i.Anim != nil && len(i.Anim.Image) > 1
}

// Size returns the pixel dimensions as stored, before any EXIF orientation.
// Animations report their logical screen.
func (i *Image) Size() (int, int) {
	if i.Animated() && i.Anim.Config.Width > 0 && i.Anim.Config.Height > 0 {
		return i.Anim.Config.Width, i.Anim.Config.Height
	}
	if i.Animated() {
		var r image.Rectangle
		for _, f := range i.Anim.Image {
			r = r.Union(f.Bounds())
		}
		return r.Max.X, r.Max.Y
	}
	b := i.Frame.Bounds()
	return b.Dx(), b.Dy()
}

// Decode sniffs the format of data and decodes it.
func Decode(data []byte) (*Image, error) {
	f, err := format.Detect(data)
	if err != nil {
		return nil, err
	}
	return DecodeAs(data, f)
}

// DecodeAs decodes data that is already known to be in format f.
func DecodeAs(data []byte, f format.Format) (*Image, error) {
	img := &Image{Format: f, Orientation: 1}

	switch f {
	case format.GIF:
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode gif: %w", err)
		}
		if len(g.Image) == 0 {
			return nil, fmt.Errorf("failed to decode gif: no frames")
		}
		img.Frame = g.Image[0]
		if len(g.Image) > 1 {
			img.Anim = g
		}
	case format.WEBP:
		m, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode webp: %w", err)
		}
		img.Frame = m
	case format.AVIF:
		m, err := gavif.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode avif: %w", err)
		}
		img.Frame = m
	case format.JPEG, format.PNG, format.TIFF:
		m, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", f, err)
		}
		img.Frame = m
	default:
		return nil, fmt.Errorf("failed to decode: %w", format.ErrUnknownFormat)
	}

	if f == format.JPEG {
		img.Orientation = readOrientation(data)
		img.Segments = metadataSegments(data)
	}

	return img, nil
}

// readOrientation returns the EXIF orientation tag, or 1 when it is missing or invalid.
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// orient bakes an EXIF orientation into the pixels.
func orient(m image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(m)
	case 3:
		return imaging.Rotate180(m)
	case 4:
		return imaging.FlipV(m)
	case 5:
		return imaging.Transpose(m)
	case 6:
		return imaging.Rotate270(m)
	case 7:
		return imaging.Transverse(m)
	case 8:
		return imaging.Rotate90(m)
	default:
		return m
	}
}

// firstFrame composites the first frame of an animation onto its logical screen.
func firstFrame(g *gif.GIF, w, h int) image.Image {
	canvas := imaging.New(w, h, image.Transparent)
	f := g.Image[0]
	return imaging.Paste(canvas, f, f.Bounds().Min)
}

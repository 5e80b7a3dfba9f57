// Package resize fits decoded images into a bounding box. Still images are
// resampled with Lanczos, animated GIFs frame by frame with one global ratio,
// and the result can be centred on a solid background of the box size.
package resize

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/aliskhannn/image-compressor/internal/codec"
	"github.com/aliskhannn/image-compressor/internal/format"
	"github.com/aliskhannn/image-compressor/internal/model"
)

// Options describe one resize request.
type Options struct {
	MaxWidth  int
	MaxHeight int
	// Fill centres the result on a MaxWidth×MaxHeight canvas of FillColor.
	Fill      bool
	FillColor string
}

// OptionsFromProfile extracts the resize request of a profile.
func OptionsFromProfile(p model.Profile) Options {
	return Options{
		MaxWidth:  p.MaxWidth,
		MaxHeight: p.MaxHeight,
		Fill:      p.BackgroundFillEnabled,
		FillColor: p.BackgroundFill,
	}
}

// encoder re-encodes a decoded image.
type encoder interface {
	Encode(img *codec.Image, p codec.Parameters, target format.Format, batch int) ([]byte, error)
}

// Engine resizes images.
type Engine struct {
	enc encoder
}

// NewEngine creates an Engine. enc is only used by Resize to write the
// result back in its source format.
func NewEngine(enc encoder) *Engine {
	return &Engine{enc: enc}
}

// Apply resizes img in place and returns it. The caller hands over
// ownership of img. Images already inside the box are left untouched unless
// a background fill is requested.
func (e *Engine) Apply(img *codec.Image, opts Options) (*codec.Image, error) {
	img, _, err := e.apply(img, opts)
	return img, err
}

// Resize decodes data, applies opts and re-encodes the result in the source
// format at maximum quality. When nothing applies the input is returned as is.
func (e *Engine) Resize(data []byte, opts Options) ([]byte, error) {
	img, err := codec.Decode(data)
	if err != nil {
		return nil, model.NewError(model.KindImageResizeError, fmt.Errorf("failed to decode image: %w", err))
	}

	img, changed, err := e.apply(img, opts)
	if err != nil {
		return nil, err
	}
	if !changed {
		return data, nil
	}

	out, err := e.enc.Encode(img, codec.MaxQuality(), img.Format, 1)
	if err != nil {
		return nil, model.NewError(model.KindImageResizeError, fmt.Errorf("failed to encode resized image: %w", err))
	}
	return out, nil
}

func (e *Engine) apply(img *codec.Image, opts Options) (*codec.Image, bool, error) {
	if opts.MaxWidth <= 0 || opts.MaxHeight <= 0 {
		return nil, false, model.Errorf(model.KindImageResizeError, "invalid bounding box %dx%d", opts.MaxWidth, opts.MaxHeight)
	}

	boxW, boxH := EffectiveBox(img.Orientation, opts.MaxWidth, opts.MaxHeight)
	w, h := img.Size()
	fw, fh := Fit(w, h, boxW, boxH)
	resized := fw != w || fh != h

	if img.Animated() {
		if resized {
			if err := resizeAnimation(img, fw, fh); err != nil {
				return nil, false, err
			}
		}
		return img, resized, nil
	}

	if resized {
		img.Frame = imaging.Resize(img.Frame, fw, fh, imaging.Lanczos)
	}

	if opts.Fill {
		bg, err := ParseHexColor(opts.FillColor)
		if err != nil {
			return nil, false, err
		}
		img.Frame = fill(img.Frame, boxW, boxH, bg)
		return img, true, nil
	}

	return img, resized, nil
}

// fill centres m on an opaque w×h canvas.
func fill(m image.Image, w, h int, bg color.Color) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetColor(bg)
	dc.Clear()
	size := m.Bounds().Size()
	dc.DrawImage(m, (w-size.X)/2, (h-size.Y)/2)
	return dc.Image()
}

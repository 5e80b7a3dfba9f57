package codec

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"

	avifenc "github.com/Kagami/go-avif"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/gen2brain/jpegli"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/aliskhannn/image-compressor/internal/format"
)

const (
	// avifSpeed trades encode time against size; 0 is slowest, 8 fastest.
	avifSpeed = 6
	// avifMaxQuantizer is the worst quantizer the AVIF encoder accepts.
	avifMaxQuantizer = 63
	avifMaxThreads   = 64
)

// avifEncode is the AVIF encoder entry point.
var avifEncode = avifenc.Encode

// encodeStill writes a single frame in format f using the shared engine.
func encodeStill(w io.Writer, m image.Image, p Parameters, f format.Format) error {
	switch f {
	case format.JPEG:
		return encodeJPEG(w, m, p.JPEGQuality, p.Lossless)
	case format.PNG:
		return encodePNG(w, m, p.PNGQuality, p.Lossless)
	case format.WEBP:
		return encodeWebP(w, m, p.WebPQuality, p.Lossless)
	case format.GIF:
		return encodeGIF(w, m, p.GIFQuality, p.Lossless)
	case format.TIFF:
		return encodeTIFF(w, m)
	default:
		return fmt.Errorf("%s is not handled by the shared engine", f)
	}
}

func encodeJPEG(w io.Writer, m image.Image, quality int, lossless bool) error {
	opts := &jpegli.EncodingOptions{
		Quality:           clamp(quality, 1, 100),
		ChromaSubsampling: image.YCbCrSubsampleRatio420,
	}
	if lossless {
		opts.Quality = 100
		opts.ChromaSubsampling = image.YCbCrSubsampleRatio444
	}
	if err := jpegli.Encode(w, m, opts); err != nil {
		return fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return nil
}

func encodePNG(w io.Writer, m image.Image, quality int, lossless bool) error {
	if !lossless && quality < 100 {
		m = quantizeImage(m, paletteSize(quality))
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, m); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func encodeWebP(w io.Writer, m image.Image, quality int, lossless bool) error {
	opts := &webp.Options{
		Lossless: lossless,
		Quality:  float32(clamp(quality, 0, 100)),
	}
	if err := webp.Encode(w, m, opts); err != nil {
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	return nil
}

func encodeGIF(w io.Writer, m image.Image, quality int, lossless bool) error {
	colors := 256
	if !lossless {
		colors = paletteSize(quality)
	}
	opts := &gif.Options{
		NumColors: colors,
		Quantizer: quantize.MedianCutQuantizer{AddTransparent: !opaque(m)},
		Drawer:    draw.FloydSteinberg,
	}
	if err := gif.Encode(w, m, opts); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}

// encodeAnimatedGIF re-encodes every frame of g, reducing frame palettes
// according to quality. The animation always loops forever.
func encodeAnimatedGIF(w io.Writer, g *gif.GIF, quality int, lossless bool) error {
	if !lossless && quality < 100 {
		colors := paletteSize(quality)
		for i, frame := range g.Image {
			g.Image[i] = reducePalette(frame, colors)
		}
	}
	g.LoopCount = 0
	if err := gif.EncodeAll(w, g); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}

func encodeTIFF(w io.Writer, m image.Image) error {
	if err := tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return fmt.Errorf("failed to encode tiff: %w", err)
	}
	return nil
}

// encodeAVIF converts m to a raw NRGBA buffer and hands it to the AVIF encoder.
func encodeAVIF(w io.Writer, m image.Image, quality int, lossless bool, threads int) error {
	quantizer := (100 - clamp(quality, 0, 100)) * avifMaxQuantizer / 100
	if lossless {
		quantizer = 0
	}
	opts := &avifenc.Options{
		Threads: clamp(threads, 1, avifMaxThreads),
		Speed:   avifSpeed,
		Quality: quantizer,
	}
	if err := avifEncode(w, imaging.Clone(m), opts); err != nil {
		return fmt.Errorf("failed to encode avif: %w", err)
	}
	return nil
}

// paletteSize maps a 0-100 quality onto 2-256 palette entries.
func paletteSize(quality int) int {
	return 2 + clamp(quality, 0, 100)*254/100
}

// quantizeImage reduces m to at most n colours with error diffusion.
func quantizeImage(m image.Image, n int) *image.Paletted {
	q := quantize.MedianCutQuantizer{AddTransparent: !opaque(m)}
	palette := q.Quantize(make(color.Palette, 0, n), m)
	b := m.Bounds()
	dst := image.NewPaletted(b, palette)
	draw.FloydSteinberg.Draw(dst, b, m, b.Min)
	return dst
}

// reducePalette shrinks a frame palette to n entries. Pixels are remapped to
// the nearest colour without dithering so transparent areas stay transparent.
func reducePalette(frame *image.Paletted, n int) *image.Paletted {
	if len(frame.Palette) <= n {
		return frame
	}
	q := quantize.MedianCutQuantizer{AddTransparent: hasTransparent(frame.Palette)}
	palette := q.Quantize(make(color.Palette, 0, n), frame)
	b := frame.Bounds()
	dst := image.NewPaletted(b, palette)
	draw.Draw(dst, b, frame, b.Min, draw.Src)
	return dst
}

func opaque(m image.Image) bool {
	if o, ok := m.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

func hasTransparent(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a == 0 {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

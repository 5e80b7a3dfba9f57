package resize

import (
	"image"

	"github.com/disintegration/imaging"
	nfnt "github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"github.com/aliskhannn/image-compressor/internal/codec"
	"github.com/aliskhannn/image-compressor/internal/model"
)

// resizeAnimation scales the logical screen of img to w×h and every frame by
// one ratio, min(w/sw, h/sh). Offsets and sizes are scaled separately and
// rounded half up. Frames whose size rounds to zero are dropped and their
// delay is added to the previous frame.
func resizeAnimation(img *codec.Image, w, h int) error {
	g := img.Anim
	sw, sh := img.Size()
	screen := image.Rect(0, 0, w, h)

	num, den := w, sw
	if int64(h)*int64(sw) < int64(w)*int64(sh) {
		num, den = h, sh
	}

	frames := make([]*image.Paletted, 0, len(g.Image))
	delays := make([]int, 0, len(g.Image))
	disposals := make([]byte, 0, len(g.Image))
	pending := 0

	for i, frame := range g.Image {
		b := frame.Bounds()
		off := image.Pt(scale(b.Min.X, num, den), scale(b.Min.Y, num, den))
		size := image.Pt(scale(b.Dx(), num, den), scale(b.Dy(), num, den))
		r := image.Rectangle{Min: off, Max: off.Add(size)}.Intersect(screen)

		delay := at(g.Delay, i)
		if r.Empty() {
			if n := len(delays); n > 0 {
				delays[n-1] += delay
			} else {
				pending += delay
			}
			continue
		}

		frames = append(frames, resampleFrame(frame, r))
		delays = append(delays, delay+pending)
		disposals = append(disposals, at(g.Disposal, i))
		pending = 0
	}

	if len(frames) == 0 {
		return model.Errorf(model.KindImageResizeError, "all %d frames collapse at %dx%d", len(g.Image), w, h)
	}

	g.Image, g.Delay, g.Disposal = frames, delays, disposals
	g.Config.Width, g.Config.Height = w, h
	g.LoopCount = 0
	img.Frame = frames[0]

	if len(frames) == 1 {
		img.Frame = imaging.Paste(imaging.New(w, h, image.Transparent), frames[0], frames[0].Bounds().Min)
		img.Anim = nil
	}
	return nil
}

// resampleFrame scales frame into r with Lanczos3 and maps the result back
// onto the frame's own palette.
func resampleFrame(frame *image.Paletted, r image.Rectangle) *image.Paletted {
	scaled := nfnt.Resize(uint(r.Dx()), uint(r.Dy()), frame, nfnt.Lanczos3)
	dst := image.NewPaletted(r, frame.Palette)
	draw.Draw(dst, r, scaled, scaled.Bounds().Min, draw.Src)
	return dst
}

func at[T any](s []T, i int) T {
	var zero T
	if i < len(s) {
		return s[i]
	}
	return zero
}

package codec

import (
	"bytes"
	"fmt"
	"image"

	"github.com/aliskhannn/image-compressor/internal/format"
)

// Dispatcher routes a decoded image to the encoder of the target format.
// It never touches the filesystem.
type Dispatcher struct {
	threads int
}

// NewDispatcher creates a Dispatcher that budgets AVIF encodes out of
// totalThreads CPU threads.
func NewDispatcher(totalThreads int) *Dispatcher {
	return &Dispatcher{threads: max(1, totalThreads)}
}

// Threads returns the total thread count the dispatcher budgets from.
func (d *Dispatcher) Threads() int {
	return d.threads
}

// Compress decodes data and encodes it into target. batch is the number of
// images being compressed concurrently with this one.
func (d *Dispatcher) Compress(data []byte, p Parameters, target format.Format, batch int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return d.Encode(img, p, target, batch)
}

// Encode encodes img into target. Same-format targets are compressed, others
// converted. The dispatcher takes ownership of img.
func (d *Dispatcher) Encode(img *Image, p Parameters, target format.Format, batch int) ([]byte, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("failed to encode: %w", format.ErrUnknownFormat)
	}

	var buf bytes.Buffer

	if !target.NativeEngine() {
		threads := ThreadBudget(d.threads, batch)
		if err := encodeAVIF(&buf, d.still(img), p.AVIFQuality, p.Lossless, threads); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	if target == img.Format {
		if err := d.compress(&buf, img, p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	if err := encodeStill(&buf, d.still(img), p, target); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// compress re-encodes img in its own format. JPEG metadata segments are
// carried over when requested; the EXIF orientation then stays in effect.
func (d *Dispatcher) compress(buf *bytes.Buffer, img *Image, p Parameters) error {
	if img.Animated() {
		return encodeAnimatedGIF(buf, img.Anim, p.GIFQuality, p.Lossless)
	}

	keep := img.Format == format.JPEG && p.KeepMetadata && len(img.Segments) > 0
	frame := img.Frame
	if !keep {
		frame = orient(frame, img.Orientation)
	}

	if err := encodeStill(buf, frame, p, img.Format); err != nil {
		return err
	}

	if keep {
		spliced := spliceSegments(buf.Bytes(), img.Segments)
		buf.Reset()
		buf.Write(spliced)
	}
	return nil
}

// still flattens img to the single upright frame written by conversions.
func (d *Dispatcher) still(img *Image) image.Image {
	if img.Animated() {
		w, h := img.Size()
		return firstFrame(img.Anim, w, h)
	}
	return orient(img.Frame, img.Orientation)
}

// Package processor runs the compression pipeline for a single file:
// probe, resolve the output path, resize, encode and commit.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-compressor/internal/codec"
	"github.com/aliskhannn/image-compressor/internal/commit"
	"github.com/aliskhannn/image-compressor/internal/format"
	"github.com/aliskhannn/image-compressor/internal/model"
	"github.com/aliskhannn/image-compressor/internal/outpath"
	"github.com/aliskhannn/image-compressor/internal/probe"
	"github.com/aliskhannn/image-compressor/internal/resize"
)

// resizer fits a decoded image into a bounding box.
type resizer interface {
	Apply(img *codec.Image, opts resize.Options) (*codec.Image, error)
}

// encoder turns a decoded image into the bytes of the target format.
type encoder interface {
	Encode(img *codec.Image, p codec.Parameters, target format.Format, batch int) ([]byte, error)
}

// committer writes the encoded bytes to their final location.
type committer interface {
	Commit(ctx context.Context, data []byte, src model.SourceFile, outPath string, p model.Profile, converted bool) (model.Result, error)
}

// locker serializes runs on the same path.
type locker interface {
	Lock(ctx context.Context, path string) (func(), error)
}

// Processor compresses one file per call. It holds no per-run state, so a
// single Processor serves any number of concurrent runs.
type Processor struct {
	resizer   resizer
	encoder   encoder
	committer committer
	locker    locker
}

// New creates a Processor. l may be nil, in which case concurrent runs on the
// same path are not serialized.
func New(r resizer, e encoder, c committer, l locker) *Processor {
	return &Processor{
		resizer:   r,
		encoder:   e,
		committer: c,
		locker:    l,
	}
}

// Process compresses the file at path with profile. concurrency is the number
// of files being processed alongside this one and sizes the encoder's thread
// budget. It returns either a result or a kinded error, never both.
func (p *Processor) Process(ctx context.Context, profile model.Profile, path string, concurrency int) (model.Result, error) {
	start := time.Now()

	res, err := p.process(ctx, profile, path, concurrency)
	if err != nil {
		zlog.Logger.Warn().
			Err(err).
			Str("path", path).
			Str("kind", string(model.KindOf(err))).
			Dur("took", time.Since(start)).
			Msg("compression failed")
		return model.Result{}, err
	}

	zlog.Logger.Info().
		Str("path", res.Path).
		Str("out_path", res.OutPath).
		Int64("original_size", res.OriginalSize).
		Int64("out_size", res.OutSize).
		Bool("converted", res.Converted).
		Dur("took", time.Since(start)).
		Msg("image compressed")

	return res, nil
}

func (p *Processor) process(ctx context.Context, profile model.Profile, path string, concurrency int) (model.Result, error) {
	if p.locker != nil {
		unlock, err := p.locker.Lock(ctx, path)
		if err != nil {
			return model.Result{}, model.NewError(model.KindUnknown, err)
		}
		defer unlock()
	}

	src, img, err := probe.Probe(path)
	if err != nil {
		return model.Result{}, err
	}

	outPath := outpath.Resolve(profile, path, src.Format)
	if err := commit.CheckOverwrite(src.Path, outPath, profile); err != nil {
		return model.Result{}, err
	}

	if profile.ResizeEnabled {
		img, err = p.resizer.Apply(img, resize.OptionsFromProfile(profile))
		if err != nil {
			return model.Result{}, kinded(model.KindImageResizeError, err)
		}
	}

	target, converted := src.Format, false
	if profile.ConvertEnabled && profile.ConvertFormat != src.Format {
		target, converted = profile.ConvertFormat, true
	}

	zlog.Logger.Debug().
		Str("path", path).
		Str("format", src.Format.String()).
		Str("target", target.String()).
		Int("width", src.Width).
		Int("height", src.Height).
		Msg("encoding image")

	data, err := p.encoder.Encode(img, codec.NewParameters(profile), target, concurrency)
	if err != nil {
		return model.Result{}, kinded(model.KindUnknown, fmt.Errorf("failed to encode %s as %s: %w", path, target, err))
	}

	return p.committer.Commit(ctx, data, src, outPath, profile, converted)
}

// kinded tags err with kind unless it already carries one.
func kinded(kind model.ErrorKind, err error) error {
	var e *model.Error
	if errors.As(err, &e) {
		return err
	}
	return model.NewError(kind, err)
}

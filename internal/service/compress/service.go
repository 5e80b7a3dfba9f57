// Package compress runs the pipeline over batches of files.
package compress

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/image-compressor/internal/model"
	"github.com/aliskhannn/image-compressor/internal/probe"
)

// processor compresses a single file.
type processor interface {
	Process(ctx context.Context, profile model.Profile, path string, concurrency int) (model.Result, error)
}

// journal records outcomes for later lookup.
type journal interface {
	Save(ctx context.Context, o model.Outcome) error
}

// Service compresses batches of files with a bounded number of workers.
type Service struct {
	processor processor
	journal   journal
	workers   int
}

// New creates a Service. j may be nil when outcomes are not journaled.
func New(p processor, j journal, workers int) *Service {
	return &Service{
		processor: p,
		journal:   j,
		workers:   max(1, workers),
	}
}

// Compress processes every path with profile and returns one outcome per
// path, in input order. Failures of single files do not stop the batch.
// Files not started before ctx is done are reported as failed.
func (s *Service) Compress(ctx context.Context, profile model.Profile, paths []string) []model.Outcome {
	outcomes := make([]model.Outcome, len(paths))
	concurrency := min(s.workers, len(paths))

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, path := range paths {
		g.Go(func() error {
			outcomes[i] = s.run(ctx, profile, path, concurrency)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *Service) run(ctx context.Context, profile model.Profile, path string, concurrency int) model.Outcome {
	start := time.Now()
	o := model.Outcome{
		ID:        uuid.New(),
		Path:      path,
		CreatedAt: start.UTC(),
	}

	var (
		res model.Result
		err = ctx.Err()
	)
	if err == nil {
		res, err = s.processor.Process(ctx, profile, path, concurrency)
	}
	o.Duration = time.Since(start)

	if err != nil {
		o.Err = err.Error()
		o.Kind = model.KindOf(err)
	} else {
		o.Result = &res
	}

	if s.journal != nil {
		if err := s.journal.Save(context.WithoutCancel(ctx), o); err != nil {
			zlog.Logger.Err(err).Str("path", path).Str("outcome_id", o.ID.String()).Msg("failed to journal outcome")
		}
	}

	return o
}

// Info describes the file at path for display before processing.
func (s *Service) Info(path string) (model.FileInfo, error) {
	return probe.Info(path)
}

// Totals summarizes a batch.
type Totals struct {
	Succeeded     int   `json:"succeeded"`
	Failed        int   `json:"failed"`
	OriginalBytes int64 `json:"original_bytes"`
	OutBytes      int64 `json:"out_bytes"`
}

// Summarize adds up the outcomes of a batch.
func Summarize(outcomes []model.Outcome) Totals {
	var t Totals
	for _, o := range outcomes {
		if !o.Succeeded() {
			t.Failed++
			continue
		}
		t.Succeeded++
		t.OriginalBytes += o.Result.OriginalSize
		t.OutBytes += o.Result.OutSize
	}
	return t
}

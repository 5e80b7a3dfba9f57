package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-compressor/internal/model"
	"github.com/aliskhannn/image-compressor/internal/scan"
	"github.com/aliskhannn/image-compressor/internal/service/compress"
)

// ErrNoPaths is returned for a job without any path.
var ErrNoPaths = errors.New("job has no paths")

// service defines the interface for compressing a batch of files.
type service interface {
	Compress(ctx context.Context, profile model.Profile, paths []string) []model.Outcome
}

// profiles looks up configured profiles by name.
type profiles interface {
	Profile(name string) (model.Profile, error)
}

// publisher sends the report of a finished job.
type publisher interface {
	Produce(ctx context.Context, report model.Report) error
}

// Handler handles Kafka messages carrying compression jobs.
type Handler struct {
	service   service
	profiles  profiles
	publisher publisher
}

// NewHandler creates a new handler. p may be nil when reports are not published.
func NewHandler(s service, pr profiles, p publisher) *Handler {
	return &Handler{service: s, profiles: pr, publisher: p}
}

// Handle processes a Kafka message containing a job.
// It unmarshals the message, expands directories to the images they hold,
// compresses them and publishes the report.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var job model.Job
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		return fmt.Errorf("unmarshal job: %w", err)
	}
	if len(job.Paths) == 0 {
		return ErrNoPaths
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	profile, err := job.ResolveProfile(h.profiles.Profile)
	if err != nil {
		return fmt.Errorf("resolve profile: %w", err)
	}

	paths, err := scan.Collect(job.Paths)
	if err != nil {
		return fmt.Errorf("collect paths: %w", err)
	}

	report := model.Report{
		JobID:    job.ID,
		Outcomes: h.service.Compress(ctx, profile, paths),
	}

	totals := compress.Summarize(report.Outcomes)
	zlog.Logger.Info().
		Str("job_id", job.ID.String()).
		Str("profile", profile.Name).
		Int("succeeded", totals.Succeeded).
		Int("failed", totals.Failed).
		Msg("job processed")

	if h.publisher == nil {
		return nil
	}
	if err := h.publisher.Produce(ctx, report); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	return nil
}

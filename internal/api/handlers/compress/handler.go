package compress

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-compressor/internal/api/respond"
	"github.com/aliskhannn/image-compressor/internal/model"
	"github.com/aliskhannn/image-compressor/internal/repository/outcome"
	"github.com/aliskhannn/image-compressor/internal/scan"
	svc "github.com/aliskhannn/image-compressor/internal/service/compress"
)

// ErrJournalDisabled is returned when outcomes are requested without a journal.
var ErrJournalDisabled = errors.New("outcome journal is disabled")

// service defines the interface for compression operations.
type service interface {
	Compress(ctx context.Context, profile model.Profile, paths []string) []model.Outcome
	Info(path string) (model.FileInfo, error)
}

// outcomes looks up journaled outcomes.
type outcomes interface {
	Get(ctx context.Context, id uuid.UUID) (model.Outcome, error)
}

// profiles exposes the configured profiles.
type profiles interface {
	Profile(name string) (model.Profile, error)
}

// Handler provides HTTP handlers for compression endpoints.
type Handler struct {
	service  service
	outcomes outcomes
	profiles profiles
	list     []model.Profile
}

// NewHandler creates a new Handler. o may be nil when outcomes are not journaled.
func NewHandler(s service, o outcomes, p profiles, list []model.Profile) *Handler {
	return &Handler{service: s, outcomes: o, profiles: p, list: list}
}

// CompressResponse is returned for a processed batch.
type CompressResponse struct {
	JobID    uuid.UUID       `json:"job_id"`
	Outcomes []model.Outcome `json:"outcomes"`
	Totals   svc.Totals      `json:"totals"`
}

// Compress handles a batch request. Per-file failures are reported in the
// outcomes; the request itself only fails on a malformed job.
func (h *Handler) Compress(c *ginext.Context) {
	var job model.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		zlog.Logger.Err(err).Msg("failed to decode job")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}
	if len(job.Paths) == 0 {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("paths are required"))
		return
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	profile, err := job.ResolveProfile(h.profiles.Profile)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("profile", job.Profile).Msg("failed to resolve profile")
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	paths, err := scan.Collect(job.Paths)
	if err != nil {
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to collect paths: %v", err))
		return
	}

	out := h.service.Compress(c.Request.Context(), profile, paths)

	respond.OK(c, CompressResponse{
		JobID:    job.ID,
		Outcomes: out,
		Totals:   svc.Summarize(out),
	})
}

// Info describes the file named by the path query parameter.
func (h *Handler) Info(c *ginext.Context) {
	path := c.Query("path")
	if path == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("missing path"))
		return
	}

	info, err := h.service.Info(path)
	if err != nil {
		kind := model.KindOf(err)
		status := http.StatusBadRequest
		switch kind {
		case model.KindFileNotFound:
			status = http.StatusNotFound
		case model.KindFileTooLarge:
			status = http.StatusRequestEntityTooLarge
		}
		respond.FailKind(c, status, string(kind), err)
		return
	}

	respond.OK(c, info)
}

// Outcome returns a journaled outcome by ID.
func (h *Handler) Outcome(c *ginext.Context) {
	if h.outcomes == nil {
		respond.Fail(c, http.StatusServiceUnavailable, ErrJournalDisabled)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		zlog.Logger.Err(err).Msg("failed to parse id")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid id: %v", err))
		return
	}

	o, err := h.outcomes.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, outcome.ErrOutcomeNotFound) {
			zlog.Logger.Warn().Str("id", id.String()).Msg("outcome not found")
			respond.Fail(c, http.StatusNotFound, fmt.Errorf("outcome not found"))
			return
		}

		zlog.Logger.Err(err).Msg("failed to get outcome")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to get outcome: %v", err))
		return
	}

	respond.OK(c, o)
}

// Profiles lists the configured profiles.
func (h *Handler) Profiles(c *ginext.Context) {
	respond.OK(c, h.list)
}

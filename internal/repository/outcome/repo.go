package outcome

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/image-compressor/internal/model"
)

var ErrOutcomeNotFound = errors.New("outcome not found")

const statusFailed = "Failed"

// Repository journals compression outcomes in postgres.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts an outcome record.
func (r *Repository) Save(ctx context.Context, o model.Outcome) error {
	query := `
		INSERT INTO compressions (id, path, out_path, original_size, out_size, converted, status, error, error_type, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	status := statusFailed
	var res model.Result
	if o.Result != nil {
		res = *o.Result
		status = res.Status
	}

	_, err := r.db.ExecContext(
		ctx, query,
		o.ID, o.Path, res.OutPath, res.OriginalSize, res.OutSize, res.Converted,
		status, o.Err, string(o.Kind), o.Duration.Milliseconds(), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save: failed to save outcome: %w", err)
	}

	return nil
}

// Get retrieves an outcome by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (model.Outcome, error) {
	query := `
		SELECT path, out_path, original_size, out_size, converted, status, error, error_type, duration_ms, created_at
		FROM compressions
		WHERE id = $1
	`

	var (
		o          model.Outcome
		res        model.Result
		status     string
		kind       string
		durationMS int64
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.Path, &res.OutPath, &res.OriginalSize, &res.OutSize, &res.Converted,
		&status, &o.Err, &kind, &durationMS, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Outcome{}, ErrOutcomeNotFound
		}

		return model.Outcome{}, fmt.Errorf("get: failed to get outcome: %w", err)
	}

	o.ID = id
	o.Duration = time.Duration(durationMS) * time.Millisecond
	o.Kind = model.ErrorKind(kind)

	if status == model.StatusSuccess {
		res.Path = o.Path
		res.Status = status
		o.Result = &res
	}

	return o, nil
}

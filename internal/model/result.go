package model

import (
	"time"

	"github.com/google/uuid"
)

// StatusSuccess marks a committed result.
const StatusSuccess = "Success"

// Result is the terminal artifact of a successful run.
type Result struct {
	Path         string `json:"path"`
	OutPath      string `json:"out_path"`
	OutSize      int64  `json:"out_size"`
	OriginalSize int64  `json:"original_size"`
	Converted    bool   `json:"converted"`
	Status       string `json:"result"`
}

// Savings returns the relative size reduction in the range (-inf, 1].
func (r Result) Savings() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return 1 - float64(r.OutSize)/float64(r.OriginalSize)
}

// Outcome records one file of a batch: either Result or Err is set.
type Outcome struct {
	ID        uuid.UUID     `json:"id"`
	Path      string        `json:"path"`
	Result    *Result       `json:"result,omitempty"`
	Err       string        `json:"error,omitempty"`
	Kind      ErrorKind     `json:"error_type,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Succeeded reports whether the outcome carries a result.
func (o Outcome) Succeeded() bool {
	return o.Result != nil
}

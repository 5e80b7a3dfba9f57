package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Job is a batch compression request delivered through the queue or the HTTP API.
type Job struct {
	ID        uuid.UUID `json:"id"`
	Paths     []string  `json:"paths"`
	Profile   string    `json:"profile"`             // name of a configured profile; empty = active profile
	Overrides *Profile  `json:"overrides,omitempty"` // replaces the named profile when set
}

// Report is published once a job has been processed.
type Report struct {
	JobID    uuid.UUID `json:"job_id"`
	Outcomes []Outcome `json:"outcomes"`
}

// ResolveProfile returns the profile the job runs with: Overrides when set,
// otherwise the named profile looked up through lookup.
func (j Job) ResolveProfile(lookup func(name string) (Profile, error)) (Profile, error) {
	if j.Overrides != nil {
		p := *j.Overrides
		if p.Name == "" {
			p.Name = j.Profile
		}
		if err := p.Validate(); err != nil {
			return Profile{}, fmt.Errorf("invalid overrides: %w", err)
		}
		return p, nil
	}
	return lookup(j.Profile)
}

package domain

import (
	"strings"
	"time"
)

// JobStatus enumerates generation job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Valid reports whether the value is one of the known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// ParseJobStatus parses a status string, returning ok=false for unknown values.
func ParseJobStatus(raw string) (JobStatus, bool) {
	s := JobStatus(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// BrandInfo carries the optional brand fields of a brief.
type BrandInfo struct {
	Name    string `json:"name,omitempty"`
	Slogan  string `json:"slogan,omitempty"`
	URL     string `json:"url,omitempty"`
	LogoRef string `json:"logo_ref,omitempty"`
}

// Brief describes what to generate: the ad purpose plus brand info.
type Brief struct {
	Purpose string    `json:"purpose"`
	Brand   BrandInfo `json:"brand"`
}

// CopyVariant is one piece of ad copy rendered onto an artifact.
type CopyVariant struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CTA         string `json:"cta"`
}

// Artifact is one rendered output image plus its copy variant and size tag.
type Artifact struct {
	URL     string      `json:"url"`
	SizeTag string      `json:"size_tag"`
	Format  string      `json:"format"`
	Copy    CopyVariant `json:"copy"`
}

// GenerationJob is the durable record of one ad-generation request.
// Artifacts are appended incrementally while the job is processing and
// frozen once the status turns terminal.
type GenerationJob struct {
	ID              string     `json:"id"`
	OwnerID         string     `json:"owner_id"`
	InputImageRefs  []string   `json:"input_image_refs"`
	Brief           Brief      `json:"brief"`
	OutputArtifacts []Artifact `json:"output_artifacts"`
	Status          JobStatus  `json:"status"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

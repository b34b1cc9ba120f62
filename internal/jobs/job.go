package jobs

import (
	"time"

	"abalign/internal/alignment"
	"abalign/internal/annotate"
	"abalign/internal/backend"
)

// Status is a job's lifecycle state. Transitions only move forward:
// pending -> running -> completed|failed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether s is completed or failed.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusRunning:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	}
	return -1
}

// Type tells creation jobs from annotation jobs.
type Type string

const (
	TypeCreation   Type = "creation"
	TypeAnnotation Type = "annotation"
)

// MSARequest asks for an alignment, optionally annotated.
type MSARequest struct {
	Sequences []backend.Sequence
	Method    backend.Method
	Annotate  bool
	Scheme    string
}

// AnnotationRequest annotates an existing alignment, or aligns Sequences
// with Method first when Alignment is nil.
type AnnotationRequest struct {
	Alignment *alignment.Result
	Sequences []backend.Sequence
	Method    backend.Method
	Scheme    string
}

// Result is what a finished job produced.
type Result struct {
	Alignment  *alignment.Result `json:"alignment,omitempty"`
	Annotation *annotate.Result  `json:"annotation,omitempty"`
}

// Job is a snapshot of one job record.
type Job struct {
	ID          string     `json:"job_id"`
	Type        Type       `json:"job_type"`
	Status      Status     `json:"status"`
	Progress    float64    `json:"progress"`
	Message     string     `json:"message"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Result      *Result    `json:"result,omitempty"`
}

func (j *Job) snapshot() Job {
	c := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return c
}

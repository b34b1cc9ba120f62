// pkg/api/jobs_v1.go
package api

// JobV1 is the stable schema of a polled job record.
type JobV1 struct {
	JobID       string        `json:"job_id"`
	JobType     string        `json:"job_type"` // "creation" | "annotation"
	Status      string        `json:"status"`   // "pending" | "running" | "completed" | "failed"
	Progress    float64       `json:"progress"`
	Message     string        `json:"message"`
	CreatedAt   string        `json:"created_at"`
	CompletedAt string        `json:"completed_at,omitempty"`
	Source      string        `json:"source,omitempty"` // input file in batch runs
	Alignment   *AlignmentV1  `json:"alignment,omitempty"`
	Annotation  *AnnotationV1 `json:"annotation,omitempty"`
}

// Package domain defines the core entities of the synthetic-data
// generation pipeline: jobs, schemas, analysis findings and results.
package domain

import "time"

// Status represents the lifecycle state of a generation job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// ProgressFailed is the sentinel progress value for failed or cancelled jobs.
const ProgressFailed = -1

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Job tracks one generation request through its lifecycle.
// A job record is mutated only by the orchestrator run that owns it;
// everyone else reads.
type Job struct {
	ID           string     `json:"id"`
	Status       Status     `json:"status"`
	Progress     int        `json:"progress"` // 0-100, or ProgressFailed on failed/cancelled
	Message      string     `json:"message"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Result       *Result    `json:"result,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

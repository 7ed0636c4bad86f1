// Package progress provides the publish/subscribe fan-out that delivers
// pipeline progress events to live observers. Delivery is best-effort and
// at-most-once; clients that miss events reconcile via the job store.
package progress

import "time"

// Event is one progress update for a job. Immutable once constructed.
type Event struct {
	JobID     string         `json:"job_id"`
	Phase     string         `json:"phase"`
	Progress  int            `json:"progress"` // 0-100, or -1 on terminal failure
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	PhaseData map[string]any `json:"phase_data,omitempty"`
}

// Connection delivers events to one attached transport (a websocket, an
// in-process channel, ...). Send must be safe for concurrent use.
type Connection interface {
	Send(event Event) error
}

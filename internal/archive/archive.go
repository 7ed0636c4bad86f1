// Package archive defines durable storage for terminal job records.
// The job store forgets jobs after its TTL; callers that need results to
// outlive it persist them here. The orchestrator never writes the
// archive; the service layer does, after a run reaches a terminal state.
package archive

import (
	"context"
	"errors"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
)

// ErrNotFound is returned when no archived record exists for an id.
var ErrNotFound = errors.New("archived job not found")

// JobArchive persists and retrieves terminal job records.
type JobArchive interface {
	// Persist stores job, replacing any previous record with the same id.
	Persist(ctx context.Context, job domain.Job) error

	// Find returns the archived record for id, or ErrNotFound.
	Find(ctx context.Context, id string) (domain.Job, error)

	// List returns up to limit archived records, most recent first.
	List(ctx context.Context, limit int) ([]domain.Job, error)
}

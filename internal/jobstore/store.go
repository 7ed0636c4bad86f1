// Package jobstore provides TTL-bound storage for job records plus
// process-wide counters. Any backend offering keyed reads, atomic
// read-modify-write and per-write expiry refresh satisfies the contract.
package jobstore

import (
	"context"
	"errors"
	"time"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
)

// DefaultTTL is how long a job record survives after its last write.
// Callers needing durability beyond this must archive the job elsewhere.
const DefaultTTL = time.Hour

// ErrUnavailable signals that the storage backend cannot be reached.
// It is distinct from a missing record, which Get reports via found=false.
var ErrUnavailable = errors.New("job store unavailable")

// Store is the contract for job-state storage.
type Store interface {
	// Create writes a new job record. Every write refreshes the TTL.
	Create(ctx context.Context, job domain.Job) error

	// Get returns the record for id. found is false when the record is
	// absent or expired; err is reserved for backend failures.
	Get(ctx context.Context, id string) (domain.Job, bool, error)

	// Update applies fn to the current record (or a zero record if absent)
	// and writes the returned record back, refreshing the TTL. The read
	// and write are not interleaved with another Update on the same key.
	Update(ctx context.Context, id string, fn func(domain.Job) domain.Job) error

	// IncrementCounter adds delta to a named process-wide counter and
	// returns the new value. Counters do not expire.
	IncrementCounter(ctx context.Context, name string, delta int64) (int64, error)

	// Counter returns the current value of a named counter (0 if unset).
	Counter(ctx context.Context, name string) (int64, error)
}

package jobstore

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
	"github.com/rashkid-n/datagenesis-53/internal/log"
)

const jobKeyPrefix = "job:"
const counterKeyPrefix = "metric:"

// DefaultCleanupInterval is how often expired records are swept.
const DefaultCleanupInterval = 10 * time.Minute

// MemoryStore is an in-process Store backed by a TTL cache.
type MemoryStore struct {
	ttl   time.Duration
	cache *gocache.Cache

	// Serializes read-modify-write cycles. Job records are single-writer
	// per key, so one store-wide mutex is enough and keeps Update simple.
	updateMu  sync.Mutex
	counterMu sync.Mutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose job records expire ttl after their
// last write. A ttl <= 0 falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:   ttl,
		cache: gocache.New(ttl, DefaultCleanupInterval),
	}
}

// Create writes a new job record with a fresh TTL.
func (s *MemoryStore) Create(ctx context.Context, job domain.Job) error {
	s.cache.Set(jobKeyPrefix+job.ID, job, s.ttl)
	log.Debug(log.CatStore, "job created", "jobID", job.ID, "status", job.Status)
	return nil
}

// Get returns the job record for id.
func (s *MemoryStore) Get(ctx context.Context, id string) (domain.Job, bool, error) {
	value, found := s.cache.Get(jobKeyPrefix + id)
	if !found {
		return domain.Job{}, false, nil
	}

	job, ok := value.(domain.Job)
	if !ok {
		log.Error(log.CatStore, "wrong type assertion when getting job", "jobID", id)
		return domain.Job{}, false, nil
	}

	return job, true, nil
}

// Update applies fn under the store's update lock and writes the result
// back with a refreshed TTL. fn receives a zero record when the key is
// absent or expired; the record's ID is populated either way.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(domain.Job) domain.Job) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	current := domain.Job{ID: id}
	if value, found := s.cache.Get(jobKeyPrefix + id); found {
		if job, ok := value.(domain.Job); ok {
			current = job
		}
	}

	updated := fn(current)
	s.cache.Set(jobKeyPrefix+id, updated, s.ttl)
	return nil
}

// IncrementCounter adds delta to a named counter. Counters never expire.
func (s *MemoryStore) IncrementCounter(ctx context.Context, name string, delta int64) (int64, error) {
	s.counterMu.Lock()
	defer s.counterMu.Unlock()

	key := counterKeyPrefix + name
	if _, found := s.cache.Get(key); !found {
		s.cache.Set(key, delta, gocache.NoExpiration)
		return delta, nil
	}

	value, err := s.cache.IncrementInt64(key, delta)
	if err != nil {
		// Counter was swept between the read and the increment; reseed.
		s.cache.Set(key, delta, gocache.NoExpiration)
		return delta, nil
	}
	return value, nil
}

// Counter returns the value of a named counter, 0 if unset.
func (s *MemoryStore) Counter(ctx context.Context, name string) (int64, error) {
	s.counterMu.Lock()
	defer s.counterMu.Unlock()

	value, found := s.cache.Get(counterKeyPrefix + name)
	if !found {
		return 0, nil
	}
	n, ok := value.(int64)
	if !ok {
		log.Error(log.CatStore, "wrong type assertion when getting counter", "name", name)
		return 0, nil
	}
	return n, nil
}

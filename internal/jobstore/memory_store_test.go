package jobstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	err := store.Create(ctx, domain.Job{ID: "job-1", Status: domain.StatusPending})
	require.NoError(t, err)

	job, found, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "job-1", job.ID)
	require.Equal(t, domain.StatusPending, job.Status)
	require.Equal(t, 0, job.Progress)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	_, found, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, domain.Job{ID: "job-1", Status: domain.StatusPending}))

	err := store.Update(ctx, "job-1", func(j domain.Job) domain.Job {
		j.Status = domain.StatusRunning
		j.Progress = 42
		j.Message = "generating"
		return j
	})
	require.NoError(t, err)

	job, found, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, domain.StatusRunning, job.Status)
	require.Equal(t, 42, job.Progress)
	require.Equal(t, "generating", job.Message)
}

func TestMemoryStore_UpdateAbsentKeyGetsZeroRecordWithID(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	var seen domain.Job
	err := store.Update(ctx, "ghost", func(j domain.Job) domain.Job {
		seen = j
		j.Status = domain.StatusRunning
		return j
	})
	require.NoError(t, err)
	require.Equal(t, "ghost", seen.ID)
	require.Equal(t, domain.Status(""), seen.Status)

	job, found, err := store.Get(ctx, "ghost")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, domain.StatusRunning, job.Status)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, domain.Job{ID: "job-1", Status: domain.StatusCompleted, Progress: 100}))

	_, found, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)

	time.Sleep(80 * time.Millisecond)

	_, found, err = store.Get(ctx, "job-1")
	require.NoError(t, err)
	require.False(t, found, "expired record must read as not found, not as stale state")
}

func TestMemoryStore_WriteRefreshesTTL(t *testing.T) {
	store := NewMemoryStore(80 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, domain.Job{ID: "job-1"}))

	// Keep touching the record past the original expiry.
	for range 3 {
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, store.Update(ctx, "job-1", func(j domain.Job) domain.Job {
			j.Progress++
			return j
		}))
	}

	_, found, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
}

func TestMemoryStore_Counters(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	n, err := store.IncrementCounter(ctx, "total_generations", 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = store.IncrementCounter(ctx, "total_generations", 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	value, err := store.Counter(ctx, "total_generations")
	require.NoError(t, err)
	require.Equal(t, int64(3), value)

	value, err = store.Counter(ctx, "never_set")
	require.NoError(t, err)
	require.Equal(t, int64(0), value)
}

func TestMemoryStore_ConcurrentUpdatesAreIsolatedPerJob(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, domain.Job{ID: "a"}))
	require.NoError(t, store.Create(ctx, domain.Job{ID: "b"}))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, "a", func(j domain.Job) domain.Job {
				j.Progress++
				return j
			})
		}()
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, "b", func(j domain.Job) domain.Job {
				j.Progress += 2
				return j
			})
		}()
	}
	wg.Wait()

	a, _, err := store.Get(ctx, "a")
	require.NoError(t, err)
	b, _, err := store.Get(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, 50, a.Progress, "job a must only see its own increments")
	require.Equal(t, 100, b.Progress, "job b must only see its own increments")
}

func TestMemoryStore_ConcurrentCounterIncrements(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.IncrementCounter(ctx, "hits", 1)
		}()
	}
	wg.Wait()

	value, err := store.Counter(ctx, "hits")
	require.NoError(t, err)
	require.Equal(t, int64(100), value)
}

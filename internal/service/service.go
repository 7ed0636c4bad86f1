// Package service is the application layer over the generation pipeline.
// It owns job identity and lifecycle glue: submitting runs, answering
// status queries (falling back to the archive once the store forgets),
// advisory cancellation and the metrics snapshot. The orchestrator does
// the work; the service decides when and for whom.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rashkid-n/datagenesis-53/internal/archive"
	"github.com/rashkid-n/datagenesis-53/internal/domain"
	"github.com/rashkid-n/datagenesis-53/internal/jobstore"
	"github.com/rashkid-n/datagenesis-53/internal/log"
	"github.com/rashkid-n/datagenesis-53/internal/orchestrator"
	"github.com/rashkid-n/datagenesis-53/internal/progress"
)

// ErrJobNotFound is returned when neither the job store nor the archive
// knows the requested id.
var ErrJobNotFound = errors.New("job not found")

// ErrJobFinished is returned by Cancel when the job already reached a
// terminal state.
var ErrJobFinished = errors.New("job already finished")

// Request describes one generation submission.
type Request struct {
	SourceData  []domain.Row
	Schema      domain.Schema
	Config      domain.GenerationConfig
	Description string

	// OwnerChannel, when set, receives every progress event for the job
	// as a personal delivery in addition to the broadcast.
	OwnerChannel string
}

// Metrics is a point-in-time snapshot of the generation counters.
type Metrics struct {
	TotalGenerations      int64 `json:"total_generations"`
	SuccessfulGenerations int64 `json:"successful_generations"`
	FailedGenerations     int64 `json:"failed_generations"`
	ActiveGenerations     int64 `json:"active_generations"`
}

// Service coordinates job submission, status and cancellation.
type Service struct {
	store jobstore.Store
	orch  *orchestrator.Orchestrator
	bus   *progress.Bus
	arc   archive.JobArchive // optional

	wg sync.WaitGroup
}

// New creates a Service. arc may be nil, in which case terminal jobs are
// only kept until the store's TTL evicts them.
func New(store jobstore.Store, orch *orchestrator.Orchestrator, bus *progress.Bus, arc archive.JobArchive) *Service {
	return &Service{store: store, orch: orch, bus: bus, arc: arc}
}

// Submit registers a new job and starts its run in the background. The
// returned id is immediately queryable via Status and subscribable on
// the progress bus.
func (s *Service) Submit(ctx context.Context, req Request) (string, error) {
	jobID := uuid.New().String()

	job := domain.Job{
		ID:       jobID,
		Status:   domain.StatusPending,
		Progress: 0,
		Message:  "Job queued",
	}
	if err := s.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("failed to register job: %w", err)
	}

	log.Info(log.CatService, "job submitted", "jobID", jobID,
		"rows", req.Config.RowCount, "domain", req.Config.Domain)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// The run outlives the submitting request.
		runCtx := context.Background()

		_, err := s.orch.Run(runCtx, jobID, req.SourceData, req.Schema, req.Config, req.Description, req.OwnerChannel)
		if err != nil && !errors.Is(err, orchestrator.ErrCancelled) {
			log.ErrorErr(log.CatService, "generation run failed", err, "jobID", jobID)
		}
		s.archiveTerminal(runCtx, jobID)
	}()

	return jobID, nil
}

// Status returns the current record for id. Jobs evicted from the store
// are answered from the archive when one is configured.
func (s *Service) Status(ctx context.Context, id string) (domain.Job, error) {
	job, found, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("failed to read job %s: %w", id, err)
	}
	if found {
		return job, nil
	}

	if s.arc != nil {
		archived, err := s.arc.Find(ctx, id)
		if err == nil {
			return archived, nil
		}
		if !errors.Is(err, archive.ErrNotFound) {
			return domain.Job{}, fmt.Errorf("failed to read archived job %s: %w", id, err)
		}
	}
	return domain.Job{}, ErrJobNotFound
}

// Cancel marks the job cancelled. Cancellation is advisory: a run that
// has not started will be skipped, a run in flight completes but its
// terminal write is suppressed. Returns ErrJobFinished when the job is
// already terminal and ErrJobNotFound when it is unknown.
func (s *Service) Cancel(ctx context.Context, id string) error {
	job, found, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read job %s: %w", id, err)
	}
	if !found {
		return ErrJobNotFound
	}
	if job.Status.IsTerminal() {
		return ErrJobFinished
	}

	err = s.store.Update(ctx, id, func(j domain.Job) domain.Job {
		if j.Status.IsTerminal() {
			return j
		}
		j.Status = domain.StatusCancelled
		j.Progress = domain.ProgressFailed
		j.Message = "Job cancelled"
		return j
	})
	if err != nil {
		return fmt.Errorf("failed to cancel job %s: %w", id, err)
	}

	log.Info(log.CatService, "job cancelled", "jobID", id)
	s.bus.Publish(progress.Event{
		JobID:    id,
		Phase:    "cancelled",
		Progress: domain.ProgressFailed,
		Message:  "Job cancelled by request",
	})
	return nil
}

// Metrics reads the generation counters from the job store.
func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	var m Metrics
	var err error
	if m.TotalGenerations, err = s.store.Counter(ctx, orchestrator.CounterTotal); err != nil {
		return Metrics{}, fmt.Errorf("failed to read counters: %w", err)
	}
	if m.SuccessfulGenerations, err = s.store.Counter(ctx, orchestrator.CounterSuccessful); err != nil {
		return Metrics{}, fmt.Errorf("failed to read counters: %w", err)
	}
	if m.FailedGenerations, err = s.store.Counter(ctx, orchestrator.CounterFailed); err != nil {
		return Metrics{}, fmt.Errorf("failed to read counters: %w", err)
	}
	if m.ActiveGenerations, err = s.store.Counter(ctx, orchestrator.CounterActive); err != nil {
		return Metrics{}, fmt.Errorf("failed to read counters: %w", err)
	}
	return m, nil
}

// History returns up to limit archived jobs, most recent first. Without
// an archive the history is empty.
func (s *Service) History(ctx context.Context, limit int) ([]domain.Job, error) {
	if s.arc == nil {
		return nil, nil
	}
	jobs, err := s.arc.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived jobs: %w", err)
	}
	return jobs, nil
}

// Attach subscribes conn to events for channel.
func (s *Service) Attach(channel string, conn progress.Connection) {
	s.bus.Subscribe(channel, conn)
	log.Debug(log.CatService, "connection attached", "channel", channel)
}

// Detach removes conn from channel.
func (s *Service) Detach(channel string, conn progress.Connection) {
	s.bus.Unsubscribe(channel, conn)
}

// ChannelCount returns the number of live subscriber channels.
func (s *Service) ChannelCount() int {
	return s.bus.ChannelCount()
}

// Wait blocks until every in-flight run has finished. Used on shutdown
// and by tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

// archiveTerminal copies the job's terminal record into the archive so
// it survives store eviction. Best effort; a missing or non-terminal
// record is skipped.
func (s *Service) archiveTerminal(ctx context.Context, jobID string) {
	if s.arc == nil {
		return
	}
	job, found, err := s.store.Get(ctx, jobID)
	if err != nil || !found || !job.Status.IsTerminal() {
		return
	}
	if err := s.arc.Persist(ctx, job); err != nil {
		log.ErrorErr(log.CatService, "failed to archive job", err, "jobID", jobID)
		return
	}
	log.Debug(log.CatService, "job archived", "jobID", jobID, "status", string(job.Status))
}

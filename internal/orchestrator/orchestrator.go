// Package orchestrator drives the synthetic-data generation pipeline:
// analysis roles in fixed order, the generator fallback chain, quality
// validation and result assembly, with job-state writes and progress
// events at every transition. All I/O lives behind the analyzer,
// generator and store interfaces; the orchestrator itself only
// coordinates.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/rashkid-n/datagenesis-53/internal/analyzers"
	"github.com/rashkid-n/datagenesis-53/internal/domain"
	"github.com/rashkid-n/datagenesis-53/internal/generator"
	"github.com/rashkid-n/datagenesis-53/internal/jobstore"
	"github.com/rashkid-n/datagenesis-53/internal/log"
	"github.com/rashkid-n/datagenesis-53/internal/progress"
)

// DefaultMaxRows caps the row count any single job may request.
const DefaultMaxRows = 100

// DefaultMaxConcurrent bounds how many runs may execute their generation
// phase at once. Analysis phases are not gated; they are assumed cheap
// next to generation.
const DefaultMaxConcurrent = 5

// ErrCancelled is returned when a run finds its job already cancelled at
// schedule time. Cancellation is advisory: it stops a run that has not
// started, never one in flight.
var ErrCancelled = errors.New("job cancelled before run started")

// Counter names tracked in the job store.
const (
	CounterTotal      = "total_generations"
	CounterSuccessful = "successful_generations"
	CounterFailed     = "failed_generations"
	CounterActive     = "active_generations"
)

// Options configures an Orchestrator.
type Options struct {
	Store jobstore.Store
	Bus   *progress.Bus

	// Analyzers provides the five analysis roles. Zero-value roles fall
	// back to the deterministic implementations.
	Analyzers analyzers.Set

	// Chain is the priority-ordered generator list. When nil, a chain of
	// just the deterministic synthesizer is used.
	Chain *generator.Chain

	// Synthesizer tops up short generator results row by row. When nil,
	// the chain's tail synthesizer is reused so top-up rows share its
	// date anchor; a fresh one is created only when the chain has no
	// synthesizer tail either.
	Synthesizer *generator.Synthesizer

	MaxRows       int
	MaxConcurrent int64
}

// Orchestrator coordinates generation runs. Safe for concurrent use;
// each Run is an independent unit of concurrency sharing only the store,
// the bus and the generation gate.
type Orchestrator struct {
	store    jobstore.Store
	bus      *progress.Bus
	roles    analyzers.Set
	fallback analyzers.Set
	chain    *generator.Chain
	synth    *generator.Synthesizer
	gate     *semaphore.Weighted
	maxRows  int
	tracer   trace.Tracer
}

// New creates an Orchestrator, filling unset options with defaults.
func New(opts Options) *Orchestrator {
	fallback := analyzers.FallbackSet()
	roles := opts.Analyzers
	if roles.Domain == nil {
		roles.Domain = fallback.Domain
	}
	if roles.Privacy == nil {
		roles.Privacy = fallback.Privacy
	}
	if roles.Bias == nil {
		roles.Bias = fallback.Bias
	}
	if roles.Relationships == nil {
		roles.Relationships = fallback.Relationships
	}
	if roles.Planner == nil {
		roles.Planner = fallback.Planner
	}

	// Top-up rows must come from the same synthesizer that terminates the
	// chain, or date anchors drift between chain output and top-ups.
	synth := opts.Synthesizer
	chain := opts.Chain
	if synth == nil && chain != nil {
		synth = chain.TailSynthesizer()
	}
	if synth == nil {
		synth = generator.NewSynthesizer()
	}
	if chain == nil {
		chain = generator.NewChain(synth)
	}
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	return &Orchestrator{
		store:    opts.Store,
		bus:      opts.Bus,
		roles:    roles,
		fallback: fallback,
		chain:    chain,
		synth:    synth,
		gate:     semaphore.NewWeighted(maxConcurrent),
		maxRows:  maxRows,
		tracer:   otel.Tracer("datagenesis/orchestrator"),
	}
}

// Run executes the full pipeline for one job. ownerChannel, when
// non-empty, additionally receives every event as a personal delivery.
// The returned result is also written to the job store under jobID.
func (o *Orchestrator) Run(ctx context.Context, jobID string, source []domain.Row, schema domain.Schema, cfg domain.GenerationConfig, description, ownerChannel string) (*domain.Result, error) {
	ctx, span := o.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	// Advisory cancellation check: a job cancelled before its run starts
	// is never scheduled. In-flight runs are not interrupted.
	if job, found, err := o.store.Get(ctx, jobID); err == nil && found && job.Status == domain.StatusCancelled {
		log.Info(log.CatOrch, "skipping cancelled job", "jobID", jobID)
		return nil, ErrCancelled
	}

	// Cap the row count exactly once, before any generator can see it.
	if cfg.RowCount > o.maxRows {
		log.Warn(log.CatOrch, "row count capped", "jobID", jobID,
			"requested", cfg.RowCount, "cap", o.maxRows)
		cfg.RowCount = o.maxRows
	}

	o.markRunning(ctx, jobID)
	_, _ = o.store.IncrementCounter(ctx, CounterActive, 1)
	defer func() { _, _ = o.store.IncrementCounter(ctx, CounterActive, -1) }()

	log.Info(log.CatOrch, "starting generation pipeline", "jobID", jobID, "rows", cfg.RowCount)
	o.emit(ctx, jobID, ownerChannel, PhaseInitialization, 5, "Initializing analysis agents...", nil)

	pctx := domain.PipelineContext{Schema: schema, Config: cfg, Description: description}

	// Phase 1: domain analysis (10-25%).
	o.emit(ctx, jobID, ownerChannel, PhaseDomainAnalysis, 10, "Domain expert analyzing data structure...", nil)
	da := o.analyzeDomain(ctx, source, schema, cfg, description)
	pctx.Domain = &da
	o.emit(ctx, jobID, ownerChannel, PhaseDomainAnalysis, 25,
		fmt.Sprintf("Domain expert: detected %s domain", da.Domain),
		map[string]any{"domain": da.Domain, "confidence": da.Confidence})

	// Phase 2: privacy assessment (25-40%).
	o.emit(ctx, jobID, ownerChannel, PhasePrivacyAssessment, 30, "Privacy agent assessing data sensitivity...", nil)
	pa := o.assessPrivacy(ctx, source, cfg, da)
	pctx.Privacy = &pa
	o.emit(ctx, jobID, ownerChannel, PhasePrivacyAssessment, 40,
		fmt.Sprintf("Privacy agent: %d%% privacy score", pa.PrivacyScore),
		map[string]any{"privacy_score": pa.PrivacyScore, "risk_level": pa.RiskLevel})

	// Phase 3: bias detection (40-55%).
	o.emit(ctx, jobID, ownerChannel, PhaseBiasDetection, 45, "Bias detector analyzing for fairness...", nil)
	ba := o.detectBias(ctx, source, cfg, da)
	pctx.Bias = &ba
	o.emit(ctx, jobID, ownerChannel, PhaseBiasDetection, 55,
		fmt.Sprintf("Bias detector: %d%% bias score", ba.BiasScore),
		map[string]any{"bias_score": ba.BiasScore})

	// Phase 4: relationship mapping (55-70%).
	o.emit(ctx, jobID, ownerChannel, PhaseRelationshipMapping, 60, "Relationship agent mapping data connections...", nil)
	rm := o.mapRelationships(ctx, source, schema, da)
	pctx.Relationships = &rm
	o.emit(ctx, jobID, ownerChannel, PhaseRelationshipMapping, 70,
		fmt.Sprintf("Relationship agent: mapped %d relationships", len(rm.Relationships)),
		map[string]any{"relationships": len(rm.Relationships)})

	// Phase 5: quality planning (70-75%).
	o.emit(ctx, jobID, ownerChannel, PhaseQualityPlanning, 72, "Quality agent planning generation strategy...", nil)
	plan := o.planGeneration(ctx, da, pa, ba, rm, cfg)
	pctx.Plan = &plan
	o.emit(ctx, jobID, ownerChannel, PhaseQualityPlanning, 75, "Quality agent: generation strategy optimized", nil)

	// Phase 6: generation (75-90%), gated by the concurrency ceiling.
	rows, provider, err := o.generate(ctx, jobID, ownerChannel, pctx, source)
	if err != nil {
		return nil, o.fail(ctx, jobID, ownerChannel, err)
	}

	// Phase 7: quality validation (90-95%). Descriptive only.
	o.emit(ctx, jobID, ownerChannel, PhaseQualityValidation, 92, "Quality agent validating generated data...", nil)
	scores := o.validate(ctx, rows, source, pctx)
	o.emit(ctx, jobID, ownerChannel, PhaseQualityValidation, 95,
		fmt.Sprintf("Quality validation: %d%% quality", scores.OverallScore),
		map[string]any{"overall_score": scores.OverallScore})

	// Phase 8: final assembly (95-98%).
	o.emit(ctx, jobID, ownerChannel, PhaseFinalAssembly, 98, "Assembling final results...", nil)
	result := &domain.Result{
		Rows: rows,
		Metadata: domain.Metadata{
			JobID:          jobID,
			RowCount:       len(rows),
			ColumnCount:    schema.ColumnCount(),
			GeneratedAt:    time.Now().UTC(),
			AgentsInvolved: analyzers.RoleNames(),
			ProviderUsed:   provider,
		},
		QualityScore:  scores.OverallScore,
		PrivacyScore:  pa.PrivacyScore,
		BiasScore:     ba.BiasScore,
		AgentInsights: pctx.Insights(),
	}

	// A run whose record was cancelled in flight does not count as a
	// generation; only a landed terminal write tallies.
	if o.markCompleted(ctx, jobID, result) {
		_, _ = o.store.IncrementCounter(ctx, CounterTotal, 1)
		_, _ = o.store.IncrementCounter(ctx, CounterSuccessful, 1)
		o.emit(ctx, jobID, ownerChannel, PhaseCompletion, 100, "Generation completed successfully", nil)
	}
	log.Info(log.CatOrch, "pipeline complete", "jobID", jobID, "rows", len(rows), "provider", provider)
	return result, nil
}

// generate runs the fallback chain under the concurrency gate and tops
// short results up from the deterministic synthesizer so the row count
// always matches the capped request.
func (o *Orchestrator) generate(ctx context.Context, jobID, ownerChannel string, pctx domain.PipelineContext, source []domain.Row) ([]domain.Row, string, error) {
	gctx, span := o.tracer.Start(ctx, "pipeline.data_generation")
	defer span.End()

	if err := o.gate.Acquire(gctx, 1); err != nil {
		return nil, "", fmt.Errorf("waiting for generation slot: %w", err)
	}
	defer o.gate.Release(1)

	o.emit(ctx, jobID, ownerChannel, PhaseDataGeneration, 80, "Generating synthetic data...", nil)

	rows, provider, err := o.chain.Generate(gctx, pctx, source)
	if err != nil {
		return nil, "", fmt.Errorf("production-quality synthetic data generation failed: %w", err)
	}

	want := pctx.Config.RowCount
	if want <= 0 {
		want = len(rows)
	}
	if len(rows) > want {
		rows = rows[:want]
	} else if len(rows) < want {
		log.Info(log.CatOrch, "topping up short generator result", "jobID", jobID,
			"provider", provider, "got", len(rows), "want", want)
		for i := len(rows); i < want; i++ {
			rows = append(rows, o.synth.Row(pctx.Schema, i))
		}
	}

	o.emit(ctx, jobID, ownerChannel, PhaseDataGeneration, 90,
		fmt.Sprintf("Generated %d synthetic records", len(rows)),
		map[string]any{"provider": provider, "rows": len(rows)})
	return rows, provider, nil
}

// Analyzer invocations degrade to the fallback role on error so analysis
// failures never stall the pipeline.

func (o *Orchestrator) analyzeDomain(ctx context.Context, rows []domain.Row, schema domain.Schema, cfg domain.GenerationConfig, description string) domain.DomainAnalysis {
	ctx, span := o.tracer.Start(ctx, "pipeline.domain_analysis")
	defer span.End()

	da, err := o.roles.Domain.AnalyzeDomain(ctx, rows, schema, cfg, description)
	if err != nil {
		log.ErrorErr(log.CatOrch, "domain analyzer failed, using fallback", err)
		da, _ = o.fallback.Domain.AnalyzeDomain(ctx, rows, schema, cfg, description)
	}
	return da
}

func (o *Orchestrator) assessPrivacy(ctx context.Context, rows []domain.Row, cfg domain.GenerationConfig, da domain.DomainAnalysis) domain.PrivacyAssessment {
	ctx, span := o.tracer.Start(ctx, "pipeline.privacy_assessment")
	defer span.End()

	pa, err := o.roles.Privacy.AssessPrivacy(ctx, rows, cfg, da)
	if err != nil {
		log.ErrorErr(log.CatOrch, "privacy analyzer failed, using fallback", err)
		pa, _ = o.fallback.Privacy.AssessPrivacy(ctx, rows, cfg, da)
	}
	return pa
}

func (o *Orchestrator) detectBias(ctx context.Context, rows []domain.Row, cfg domain.GenerationConfig, da domain.DomainAnalysis) domain.BiasAssessment {
	ctx, span := o.tracer.Start(ctx, "pipeline.bias_detection")
	defer span.End()

	ba, err := o.roles.Bias.DetectBias(ctx, rows, cfg, da)
	if err != nil {
		log.ErrorErr(log.CatOrch, "bias analyzer failed, using fallback", err)
		ba, _ = o.fallback.Bias.DetectBias(ctx, rows, cfg, da)
	}
	return ba
}

func (o *Orchestrator) mapRelationships(ctx context.Context, rows []domain.Row, schema domain.Schema, da domain.DomainAnalysis) domain.RelationshipMap {
	ctx, span := o.tracer.Start(ctx, "pipeline.relationship_mapping")
	defer span.End()

	rm, err := o.roles.Relationships.MapRelationships(ctx, rows, schema, da)
	if err != nil {
		log.ErrorErr(log.CatOrch, "relationship analyzer failed, using fallback", err)
		rm, _ = o.fallback.Relationships.MapRelationships(ctx, rows, schema, da)
	}
	return rm
}

func (o *Orchestrator) planGeneration(ctx context.Context, da domain.DomainAnalysis, pa domain.PrivacyAssessment, ba domain.BiasAssessment, rm domain.RelationshipMap, cfg domain.GenerationConfig) domain.QualityPlan {
	ctx, span := o.tracer.Start(ctx, "pipeline.quality_planning")
	defer span.End()

	plan, err := o.roles.Planner.PlanGeneration(ctx, da, pa, ba, rm, cfg)
	if err != nil {
		log.ErrorErr(log.CatOrch, "quality planner failed, using fallback", err)
		plan, _ = o.fallback.Planner.PlanGeneration(ctx, da, pa, ba, rm, cfg)
	}
	return plan
}

func (o *Orchestrator) validate(ctx context.Context, generated, source []domain.Row, pctx domain.PipelineContext) domain.ValidationScores {
	ctx, span := o.tracer.Start(ctx, "pipeline.quality_validation")
	defer span.End()

	scores, err := o.roles.Planner.ValidateGenerated(ctx, generated, source, pctx)
	if err != nil {
		log.ErrorErr(log.CatOrch, "quality validation failed, using fallback", err)
		scores, _ = o.fallback.Planner.ValidateGenerated(ctx, generated, source, pctx)
	}
	return scores
}

// emit records the phase transition in the job store and publishes the
// event broadcast plus, when known, to the job owner's channel. Store
// write failures are logged and ignored; progress reporting must never
// abort the pipeline.
func (o *Orchestrator) emit(ctx context.Context, jobID, ownerChannel string, phase Phase, pct int, message string, data map[string]any) {
	err := o.store.Update(ctx, jobID, func(j domain.Job) domain.Job {
		if j.Status.IsTerminal() {
			return j
		}
		j.Status = domain.StatusRunning
		if pct >= 0 {
			j.Progress = pct
		}
		j.Message = message
		return j
	})
	if err != nil {
		log.Warn(log.CatOrch, "job store update failed", "jobID", jobID, "phase", phase, "error", err.Error())
	}

	event := progress.Event{
		JobID:     jobID,
		Phase:     string(phase),
		Progress:  pct,
		Message:   message,
		Timestamp: time.Now().UTC(),
		PhaseData: data,
	}
	o.bus.Publish(event)
	if ownerChannel != "" {
		o.bus.PublishTo(ownerChannel, event)
	}
}

func (o *Orchestrator) markRunning(ctx context.Context, jobID string) {
	now := time.Now().UTC()
	err := o.store.Update(ctx, jobID, func(j domain.Job) domain.Job {
		if j.Status.IsTerminal() {
			return j
		}
		j.Status = domain.StatusRunning
		j.Progress = 0
		j.StartedAt = &now
		return j
	})
	if err != nil {
		log.Warn(log.CatOrch, "failed to mark job running", "jobID", jobID, "error", err.Error())
	}
}

// markCompleted writes the terminal completed state unless the record was
// cancelled while the run was in flight. Returns whether the write
// actually landed.
func (o *Orchestrator) markCompleted(ctx context.Context, jobID string, result *domain.Result) bool {
	now := time.Now().UTC()
	completed := false
	err := o.store.Update(ctx, jobID, func(j domain.Job) domain.Job {
		if j.Status == domain.StatusCancelled {
			return j
		}
		j.Status = domain.StatusCompleted
		j.Progress = 100
		j.Message = "Generation completed successfully"
		j.Result = result
		j.CompletedAt = &now
		j.ErrorMessage = ""
		completed = true
		return j
	})
	if err != nil {
		log.Warn(log.CatOrch, "failed to mark job completed", "jobID", jobID, "error", err.Error())
	}
	return completed
}

// fail writes the terminal failed state (guarded against cancellation),
// publishes the error event and returns cause for the caller.
func (o *Orchestrator) fail(ctx context.Context, jobID, ownerChannel string, cause error) error {
	log.ErrorErr(log.CatOrch, "pipeline failed", cause, "jobID", jobID)

	now := time.Now().UTC()
	err := o.store.Update(ctx, jobID, func(j domain.Job) domain.Job {
		if j.Status == domain.StatusCancelled {
			return j
		}
		j.Status = domain.StatusFailed
		j.Progress = domain.ProgressFailed
		j.Message = "Generation failed"
		j.ErrorMessage = cause.Error()
		j.CompletedAt = &now
		return j
	})
	if err != nil {
		log.Warn(log.CatOrch, "failed to mark job failed", "jobID", jobID, "error", err.Error())
	}

	event := progress.Event{
		JobID:     jobID,
		Phase:     string(PhaseError),
		Progress:  domain.ProgressFailed,
		Message:   fmt.Sprintf("Generation failed: %v", cause),
		Timestamp: now,
	}
	o.bus.Publish(event)
	if ownerChannel != "" {
		o.bus.PublishTo(ownerChannel, event)
	}

	_, _ = o.store.IncrementCounter(ctx, CounterTotal, 1)
	_, _ = o.store.IncrementCounter(ctx, CounterFailed, 1)
	return cause
}

// Package analyzers defines the five advisory analysis roles of the
// generation pipeline and their deterministic fallbacks. Roles are
// polymorphic over implementation: a real analysis backend, or the
// conservative defaults here when none is configured. Role output is
// advisory, never gating; a role must not fail on empty input.
package analyzers

import (
	"context"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
)

// DomainAnalyzer reads the source rows and schema to identify the data
// domain and derive generation rules for it.
type DomainAnalyzer interface {
	AnalyzeDomain(ctx context.Context, rows []domain.Row, schema domain.Schema, cfg domain.GenerationConfig, description string) (domain.DomainAnalysis, error)
}

// PrivacyAnalyzer scores the sensitivity of the source data, enriched by
// the domain analysis that precedes it.
type PrivacyAnalyzer interface {
	AssessPrivacy(ctx context.Context, rows []domain.Row, cfg domain.GenerationConfig, da domain.DomainAnalysis) (domain.PrivacyAssessment, error)
}

// BiasAnalyzer scores fairness concerns in the source data.
type BiasAnalyzer interface {
	DetectBias(ctx context.Context, rows []domain.Row, cfg domain.GenerationConfig, da domain.DomainAnalysis) (domain.BiasAssessment, error)
}

// RelationshipAnalyzer maps dependencies between fields.
type RelationshipAnalyzer interface {
	MapRelationships(ctx context.Context, rows []domain.Row, schema domain.Schema, da domain.DomainAnalysis) (domain.RelationshipMap, error)
}

// QualityPlanner turns all prior findings into a generation strategy, and
// afterwards applies the descriptive scoring rubric to generated rows.
type QualityPlanner interface {
	PlanGeneration(ctx context.Context, da domain.DomainAnalysis, pa domain.PrivacyAssessment, ba domain.BiasAssessment, rm domain.RelationshipMap, cfg domain.GenerationConfig) (domain.QualityPlan, error)
	ValidateGenerated(ctx context.Context, generated, source []domain.Row, pctx domain.PipelineContext) (domain.ValidationScores, error)
}

// Set bundles one implementation per role.
type Set struct {
	Domain        DomainAnalyzer
	Privacy       PrivacyAnalyzer
	Bias          BiasAnalyzer
	Relationships RelationshipAnalyzer
	Planner       QualityPlanner
}

// RoleNames lists the analyzer roles in invocation order.
func RoleNames() []string {
	return []string{"domain_expert", "privacy_agent", "bias_detector", "relationship_agent", "quality_agent"}
}

// FallbackSet returns a Set of the deterministic fallback roles.
func FallbackSet() Set {
	return Set{
		Domain:        &FallbackDomainAnalyzer{},
		Privacy:       &FallbackPrivacyAnalyzer{},
		Bias:          &FallbackBiasAnalyzer{},
		Relationships: &FallbackRelationshipAnalyzer{},
		Planner:       &FallbackQualityPlanner{},
	}
}

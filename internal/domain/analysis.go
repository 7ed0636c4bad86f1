package domain

// DomainAnalysis is the domain expert's reading of the source schema.
type DomainAnalysis struct {
	Domain             string            `json:"domain"`
	Confidence         float64           `json:"confidence"`
	QualityNotes       []string          `json:"quality_notes,omitempty"`
	DomainRules        []string          `json:"domain_rules,omitempty"`
	GenerationPatterns map[string]string `json:"generation_patterns,omitempty"`
}

// PrivacyAssessment scores the sensitivity of the source data.
type PrivacyAssessment struct {
	PrivacyScore           int      `json:"privacy_score"` // 0-100
	DetectedPII            []string `json:"detected_pii,omitempty"`
	SensitiveAttributes    []string `json:"sensitive_attributes,omitempty"`
	RiskLevel              string   `json:"risk_level"`
	ComplianceRequirements []string `json:"compliance_requirements,omitempty"`
	Recommendations        []string `json:"recommendations,omitempty"`
}

// BiasAssessment scores fairness concerns in the source data.
type BiasAssessment struct {
	BiasScore            int      `json:"bias_score"` // 0-100
	BiasTypes            []string `json:"bias_types,omitempty"`
	MitigationStrategies []string `json:"mitigation_strategies,omitempty"`
	DomainChecks         []string `json:"domain_checks,omitempty"`
}

// RelationshipMap captures dependencies between fields.
type RelationshipMap struct {
	Relationships    []string `json:"relationships,omitempty"`
	DetectedPatterns []string `json:"detected_patterns,omitempty"`
}

// QualityPlan is the generation strategy derived from all prior analyses.
type QualityPlan struct {
	Approach             string               `json:"approach"`
	QualityTargets       map[string]int       `json:"quality_targets"`
	GenerationParameters GenerationParameters `json:"generation_parameters"`
}

// GenerationParameters collects the constraints the generators should honor.
type GenerationParameters struct {
	DomainRules          []string `json:"domain_rules,omitempty"`
	PrivacyConstraints   []string `json:"privacy_constraints,omitempty"`
	BiasCorrections      []string `json:"bias_corrections,omitempty"`
	RelationshipMappings []string `json:"relationship_mappings,omitempty"`
}

// ValidationScores is the descriptive quality rubric applied to generated
// rows. It never gates completion.
type ValidationScores struct {
	OverallScore             int `json:"overall_score"`
	StatisticalSimilarity    int `json:"statistical_similarity"`
	RelationshipPreservation int `json:"relationship_preservation"`
	DataValidity             int `json:"data_validity"`
	Completeness             int `json:"completeness"`
	Consistency              int `json:"consistency"`
	DomainCompliance         int `json:"domain_compliance"`
}

// PipelineContext accumulates analyzer outputs across one orchestrator run.
// It is owned by a single run and discarded when the run ends.
type PipelineContext struct {
	Schema      Schema
	Config      GenerationConfig
	Description string

	Domain        *DomainAnalysis
	Privacy       *PrivacyAssessment
	Bias          *BiasAssessment
	Relationships *RelationshipMap
	Plan          *QualityPlan
}

// Insights returns the accumulated analyzer outputs keyed by role name,
// in the shape attached to a completed result.
func (c PipelineContext) Insights() map[string]any {
	insights := make(map[string]any, 5)
	if c.Domain != nil {
		insights["domain_analysis"] = *c.Domain
	}
	if c.Privacy != nil {
		insights["privacy_assessment"] = *c.Privacy
	}
	if c.Bias != nil {
		insights["bias_analysis"] = *c.Bias
	}
	if c.Relationships != nil {
		insights["relationship_analysis"] = *c.Relationships
	}
	if c.Plan != nil {
		insights["quality_plan"] = *c.Plan
	}
	return insights
}

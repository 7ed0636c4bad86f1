package orchestrator

// Phase names one step of the generation pipeline. Transitions are
// strictly sequential and forward-only; error is terminal and reachable
// from any phase.
type Phase string

const (
	PhaseInitialization      Phase = "initialization"
	PhaseDomainAnalysis      Phase = "domain_analysis"
	PhasePrivacyAssessment   Phase = "privacy_assessment"
	PhaseBiasDetection       Phase = "bias_detection"
	PhaseRelationshipMapping Phase = "relationship_mapping"
	PhaseQualityPlanning     Phase = "quality_planning"
	PhaseDataGeneration      Phase = "data_generation"
	PhaseQualityValidation   Phase = "quality_validation"
	PhaseFinalAssembly       Phase = "final_assembly"
	PhaseCompletion          Phase = "completion"
	PhaseError               Phase = "error"
)

// Phases lists the pipeline phases in execution order, excluding the
// error terminal.
func Phases() []Phase {
	return []Phase{
		PhaseInitialization,
		PhaseDomainAnalysis,
		PhasePrivacyAssessment,
		PhaseBiasDetection,
		PhaseRelationshipMapping,
		PhaseQualityPlanning,
		PhaseDataGeneration,
		PhaseQualityValidation,
		PhaseFinalAssembly,
		PhaseCompletion,
	}
}

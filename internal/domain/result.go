package domain

import "time"

// Result is the payload of a completed job.
type Result struct {
	Rows          []Row          `json:"rows"`
	Metadata      Metadata       `json:"metadata"`
	QualityScore  int            `json:"quality_score"`
	PrivacyScore  int            `json:"privacy_score"`
	BiasScore     int            `json:"bias_score"`
	AgentInsights map[string]any `json:"agent_insights,omitempty"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	JobID          string    `json:"job_id"`
	RowCount       int       `json:"row_count"`
	ColumnCount    int       `json:"column_count"`
	GeneratedAt    time.Time `json:"generated_at"`
	AgentsInvolved []string  `json:"agents_involved"`
	ProviderUsed   string    `json:"provider_used"`
}

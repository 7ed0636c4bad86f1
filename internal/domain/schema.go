package domain

// Row is a single generated or source record, keyed by field name.
type Row map[string]any

// Schema describes the dataset to synthesize, keyed by field name.
type Schema map[string]Field

// Field describes one column of the target dataset.
type Field struct {
	Type        string      `json:"type"` // string, number, boolean, date, datetime
	Examples    []any       `json:"examples,omitempty"`
	Constraints Constraints `json:"constraints,omitempty"`
}

// Constraints bounds the values a field may take.
type Constraints struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Required bool     `json:"required,omitempty"`
}

// GenerationConfig carries the caller's generation parameters.
type GenerationConfig struct {
	RowCount int    `json:"rowCount"`
	Domain   string `json:"domain,omitempty"` // caller hint, may be empty
}

// ColumnCount returns the number of fields in the schema.
func (s Schema) ColumnCount() int {
	return len(s)
}

package generator

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
	"github.com/rashkid-n/datagenesis-53/internal/log"
)

// ProviderSynthesizer is the metadata label of the deterministic synthesizer.
const ProviderSynthesizer = "deterministic-synthesizer"

// defaultRowCount is used when the config carries no row count.
const defaultRowCount = 10

var sampleNames = []string{"Ahmed Ali", "Fatima Hassan", "Omar Khalil", "Aisha Rahman", "Ibrahim Saleh"}
var sampleDomains = []string{"example.com", "test.org", "demo.net"}

// Synthesizer derives row values field by field from declared type,
// examples and name heuristics. Output is repeatable for a given row
// index on the same instance, and it never fails, which makes it the
// terminal generator of every chain.
type Synthesizer struct {
	// anchor pins date derivation so repeated calls on one instance
	// yield identical values.
	anchor time.Time
}

var _ Generator = (*Synthesizer)(nil)

// NewSynthesizer creates a synthesizer anchored one year in the past.
func NewSynthesizer() *Synthesizer {
	return NewSynthesizerAt(time.Now().UTC().AddDate(-1, 0, 0))
}

// NewSynthesizerAt creates a synthesizer with a fixed date anchor.
// Tests use this to make date output fully reproducible.
func NewSynthesizerAt(anchor time.Time) *Synthesizer {
	return &Synthesizer{anchor: anchor}
}

// Name implements Generator.
func (s *Synthesizer) Name() string {
	return ProviderSynthesizer
}

// Generate implements Generator. It always succeeds.
func (s *Synthesizer) Generate(ctx context.Context, pctx domain.PipelineContext, source []domain.Row) ([]domain.Row, error) {
	count := pctx.Config.RowCount
	if count <= 0 {
		count = defaultRowCount
	}

	rows := make([]domain.Row, count)
	for i := range count {
		rows[i] = s.Row(pctx.Schema, i)
	}
	log.Debug(log.CatGen, "synthesized rows", "count", count, "columns", len(pctx.Schema))
	return rows, nil
}

// Row derives all field values for one row index.
func (s *Synthesizer) Row(schema domain.Schema, index int) domain.Row {
	row := make(domain.Row, len(schema))
	for name, field := range schema {
		row[name] = s.Value(name, field, index)
	}
	return row
}

// Value derives a single field value: declared examples first, then field
// name heuristics, then type defaults. Identical inputs on the same
// instance produce identical output.
func (s *Synthesizer) Value(fieldName string, field domain.Field, index int) any {
	if len(field.Examples) > 0 {
		return field.Examples[index%len(field.Examples)]
	}

	lower := strings.ToLower(fieldName)
	switch {
	case strings.Contains(lower, "id"):
		return fmt.Sprintf("ID%06d", 1000+index)
	case strings.Contains(lower, "name"):
		return sampleNames[index%len(sampleNames)]
	case strings.Contains(lower, "email"):
		return fmt.Sprintf("user%d@%s", index+1, sampleDomains[index%len(sampleDomains)])
	case strings.Contains(lower, "age"):
		return numberValue(field.Constraints, index, 3, 25, 50)
	case strings.Contains(lower, "amount"), strings.Contains(lower, "price"):
		return math.Round((100+math.Mod(float64(index)*47.5, 1000))*100) / 100
	}

	switch field.Type {
	case "number":
		return numberValue(field.Constraints, index, 10, 1, 100)
	case "boolean":
		return index%2 == 0
	case "date", "datetime":
		return s.anchor.AddDate(0, 0, index*30).Format(time.RFC3339)
	default:
		return fmt.Sprintf("Sample_%s_%d", fieldName, index+1)
	}
}

// numberValue cycles a numeric value through the field's constraint range
// when one is declared, otherwise through [base, base+span).
func numberValue(c domain.Constraints, index, step int, base, span float64) any {
	lo := base
	if c.Min != nil {
		lo = *c.Min
	}
	width := span
	if c.Max != nil {
		width = *c.Max - lo + 1
		if width < 1 {
			width = 1
		}
	}

	v := lo + math.Mod(float64(index*step), width)
	if c.Max != nil && v > *c.Max {
		v = *c.Max
	}
	if v == math.Trunc(v) {
		return int(v)
	}
	return math.Round(v*100) / 100
}

// Package generator defines the row-generation capability, the
// priority-ordered fallback chain over its implementations, and the
// deterministic synthesizer that terminates the chain.
package generator

import (
	"context"
	"errors"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
)

// ErrChainExhausted is returned when every generator in the chain failed
// or produced zero rows. With the deterministic synthesizer last in the
// chain this should be unreachable; reaching it is the one fatal
// condition of the generation phase.
var ErrChainExhausted = errors.New("all generators failed or returned no rows")

// Generator produces synthetic rows from the accumulated pipeline
// context. Implementations are free to use any backend; the chain treats
// an error or an empty result as "try the next one".
type Generator interface {
	// Name labels the provider in result metadata.
	Name() string

	// Generate returns synthetic rows for pctx.Config.RowCount. The row
	// count is already capped by the orchestrator before any generator
	// runs.
	Generate(ctx context.Context, pctx domain.PipelineContext, source []domain.Row) ([]domain.Row, error)
}

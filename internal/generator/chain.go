package generator

import (
	"context"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
	"github.com/rashkid-n/datagenesis-53/internal/log"
)

// Chain tries generators in priority order until one yields rows.
// Individual failures are logged and skipped, never surfaced as the
// job's error.
type Chain struct {
	generators []Generator
}

// NewChain creates a chain over the given generators in priority order.
// The deterministic synthesizer should always be last so the chain has a
// terminal success path.
func NewChain(generators ...Generator) *Chain {
	return &Chain{generators: generators}
}

// Generate runs the fallback loop. On success it returns the rows and
// the name of the generator that produced them.
func (c *Chain) Generate(ctx context.Context, pctx domain.PipelineContext, source []domain.Row) ([]domain.Row, string, error) {
	for _, g := range c.generators {
		rows, err := g.Generate(ctx, pctx, source)
		if err != nil {
			log.Warn(log.CatGen, "generator failed, trying next",
				"provider", g.Name(), "error", err.Error())
			continue
		}
		if len(rows) == 0 {
			log.Warn(log.CatGen, "generator returned no rows, trying next", "provider", g.Name())
			continue
		}
		log.Info(log.CatGen, "generation succeeded", "provider", g.Name(), "rows", len(rows))
		return rows, g.Name(), nil
	}
	return nil, "", ErrChainExhausted
}

// Len returns the number of generators in the chain.
func (c *Chain) Len() int {
	return len(c.generators)
}

// TailSynthesizer returns the deterministic synthesizer terminating the
// chain, or nil when the chain is empty or ends in something else.
func (c *Chain) TailSynthesizer() *Synthesizer {
	if len(c.generators) == 0 {
		return nil
	}
	s, _ := c.generators[len(c.generators)-1].(*Synthesizer)
	return s
}

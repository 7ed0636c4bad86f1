package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
)

// stubGenerator is a scriptable generator for chain tests.
type stubGenerator struct {
	name  string
	rows  []domain.Row
	err   error
	calls int
}

func (g *stubGenerator) Name() string { return g.name }

func (g *stubGenerator) Generate(ctx context.Context, pctx domain.PipelineContext, source []domain.Row) ([]domain.Row, error) {
	g.calls++
	return g.rows, g.err
}

func TestChain_FirstSuccessWins(t *testing.T) {
	first := &stubGenerator{name: "primary", rows: []domain.Row{{"x": 1}}}
	second := &stubGenerator{name: "secondary", rows: []domain.Row{{"x": 2}}}
	chain := NewChain(first, second)

	rows, provider, err := chain.Generate(context.Background(), domain.PipelineContext{}, nil)
	require.NoError(t, err)
	require.Equal(t, "primary", provider)
	require.Len(t, rows, 1)
	require.Equal(t, 0, second.calls, "later generators must not run after a success")
}

func TestChain_FallsBackPastFailure(t *testing.T) {
	first := &stubGenerator{name: "primary", err: errors.New("backend down")}
	second := &stubGenerator{name: "secondary", rows: []domain.Row{{"x": 2}}}
	chain := NewChain(first, second)

	rows, provider, err := chain.Generate(context.Background(), domain.PipelineContext{}, nil)
	require.NoError(t, err)
	require.Equal(t, "secondary", provider, "result must identify the generator that succeeded")
	require.Len(t, rows, 1)
	require.Equal(t, 1, first.calls)
}

func TestChain_EmptyResultTreatedAsFailure(t *testing.T) {
	first := &stubGenerator{name: "primary", rows: []domain.Row{}}
	second := &stubGenerator{name: "secondary", rows: []domain.Row{{"x": 2}}}
	chain := NewChain(first, second)

	_, provider, err := chain.Generate(context.Background(), domain.PipelineContext{}, nil)
	require.NoError(t, err)
	require.Equal(t, "secondary", provider)
}

func TestChain_Exhausted(t *testing.T) {
	first := &stubGenerator{name: "primary", err: errors.New("down")}
	second := &stubGenerator{name: "secondary", rows: nil}
	chain := NewChain(first, second)

	_, _, err := chain.Generate(context.Background(), domain.PipelineContext{}, nil)
	require.ErrorIs(t, err, ErrChainExhausted)
}

func TestChain_TailSynthesizer(t *testing.T) {
	synth := NewSynthesizer()
	require.Same(t, synth, NewChain(&stubGenerator{name: "primary"}, synth).TailSynthesizer())
	require.Nil(t, NewChain(&stubGenerator{name: "primary"}).TailSynthesizer())
	require.Nil(t, NewChain().TailSynthesizer())
}

func TestChain_SynthesizerTailAlwaysSucceeds(t *testing.T) {
	failing := &stubGenerator{name: "primary", err: errors.New("down")}
	chain := NewChain(failing, NewSynthesizer())

	pctx := domain.PipelineContext{
		Schema: domain.Schema{"name": {Type: "string"}},
		Config: domain.GenerationConfig{RowCount: 3},
	}
	rows, provider, err := chain.Generate(context.Background(), pctx, nil)
	require.NoError(t, err)
	require.Equal(t, ProviderSynthesizer, provider)
	require.Len(t, rows, 3)
}

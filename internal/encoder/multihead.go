package encoder

import (
	"fmt"

	"github.com/23skdu/longbow-bowyer/internal/engine"
	"github.com/23skdu/longbow-bowyer/internal/graph"
)

// head bundles one attention head's projections with its attention node.
type head struct {
	query *Linear
	key   *Linear
	value *Linear
	attn  *ScaledDotProduct
}

// MultiHeadAttention runs h independent attention heads over learned
// d_model/h sub-projections of the input, concatenates the head outputs in
// head-index order, and mixes them with a final output projection.
type MultiHeadAttention struct {
	node    *graph.Node
	backend engine.Backend
	heads   []head
	out     *Linear
}

// NewMultiHeadAttention fails with *ShapeError before any parameter is
// materialized when d_model is not divisible by the head count.
func NewMultiHeadAttention(scope string, cfg Config, backend engine.Backend) (*MultiHeadAttention, error) {
	if cfg.DModel%cfg.Heads != 0 {
		return nil, &ShapeError{DModel: cfg.DModel, Heads: cfg.Heads}
	}
	dK := cfg.DModel / cfg.Heads

	m := &MultiHeadAttention{
		backend: backend,
		heads:   make([]head, cfg.Heads),
	}
	for i := range m.heads {
		hs := graph.Scope(scope, fmt.Sprintf("head_%d", i))
		m.heads[i] = head{
			query: NewLinear(graph.Scope(hs, "q"), cfg.DModel, dK, backend),
			key:   NewLinear(graph.Scope(hs, "k"), cfg.DModel, dK, backend),
			value: NewLinear(graph.Scope(hs, "v"), cfg.DModel, dK, backend),
			attn:  NewScaledDotProduct(graph.Scope(hs, "attn"), dK, cfg.Dropout, backend),
		}
	}
	m.out = NewLinear(graph.Scope(scope, "out"), cfg.DModel, cfg.DModel, backend)
	m.node = graph.New(scope, m)
	return m, nil
}

// Heads returns the per-head attention nodes in head-index order, for
// inspection of the score distributions.
func (m *MultiHeadAttention) Heads() []*ScaledDotProduct {
	out := make([]*ScaledDotProduct, len(m.heads))
	for i := range m.heads {
		out[i] = m.heads[i].attn
	}
	return out
}

// Compute projects the input into each head's q/k/v subspace (self-attention:
// all three derive from the same input), runs the heads, and re-projects the
// concatenation back to d_model.
func (m *MultiHeadAttention) Compute(inputs ...engine.Tensor) engine.Tensor {
	x := inputs[0]

	parts := make([]engine.Tensor, len(m.heads))
	for i, h := range m.heads {
		q := h.query.Evaluate(x)
		k := h.key.Evaluate(x)
		v := h.value.Evaluate(x)
		parts[i] = h.attn.Evaluate(q, k, v)
	}

	return m.out.Evaluate(m.backend.Concat(parts...))
}

func (m *MultiHeadAttention) Evaluate(inputs ...engine.Tensor) engine.Tensor {
	return m.node.Evaluate(inputs...)
}

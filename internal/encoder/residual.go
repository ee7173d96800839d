package encoder

import (
	"github.com/23skdu/longbow-bowyer/internal/engine"
	"github.com/23skdu/longbow-bowyer/internal/graph"
)

// Sublayer is a graph component hosted inside a residual block.
type Sublayer interface {
	Evaluate(inputs ...engine.Tensor) engine.Tensor
}

// SublayerFactory builds the hosted sublayer under the given scope path.
type SublayerFactory func(scope string) (Sublayer, error)

// AttentionSublayer hosts a MultiHeadAttention inside a residual block.
func AttentionSublayer(cfg Config, backend engine.Backend) SublayerFactory {
	return func(scope string) (Sublayer, error) {
		return NewMultiHeadAttention(scope, cfg, backend)
	}
}

// FeedForwardSublayer hosts a FeedForward inside a residual block.
func FeedForwardSublayer(cfg Config, backend engine.Backend) SublayerFactory {
	return func(scope string) (Sublayer, error) {
		return NewFeedForward(scope, cfg, backend), nil
	}
}

// ResidualNorm computes X + Dropout(sublayer(LayerNorm(X))). Normalization
// happens before the sublayer (pre-norm) and the residual path carries the
// raw, un-normalized input. Moving the norm after the sublayer would be a
// different model.
type ResidualNorm struct {
	node    *graph.Node
	backend engine.Backend
	norm    *LayerNorm
	sub     Sublayer
	drop    *Dropout
}

func NewResidualNorm(scope string, rate float64, factory SublayerFactory, backend engine.Backend) (*ResidualNorm, error) {
	sub, err := factory(scope)
	if err != nil {
		return nil, err
	}

	r := &ResidualNorm{
		backend: backend,
		norm:    NewLayerNorm(graph.Scope(scope, "pre_norm"), backend),
		sub:     sub,
		drop:    NewDropout(graph.Scope(scope, "res_dropout"), rate, backend),
	}
	r.node = graph.New(scope, r)
	return r, nil
}

func (r *ResidualNorm) Compute(inputs ...engine.Tensor) engine.Tensor {
	x := inputs[0]

	normed := r.norm.Evaluate(x)
	transformed := r.sub.Evaluate(normed)
	return r.backend.Add(x, r.drop.Evaluate(transformed))
}

func (r *ResidualNorm) Evaluate(inputs ...engine.Tensor) engine.Tensor {
	return r.node.Evaluate(inputs...)
}

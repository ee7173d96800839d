package encoder

import (
	"github.com/23skdu/longbow-bowyer/internal/engine"
	"github.com/23skdu/longbow-bowyer/internal/graph"
)

// FeedForward is the position-wise two-layer projection:
// Linear(d_model -> d_ff) -> ReLU -> Dropout -> Linear(d_ff -> d_model).
type FeedForward struct {
	node    *graph.Node
	backend engine.Backend
	inner   *Linear
	drop    *Dropout
	outer   *Linear
}

func NewFeedForward(scope string, cfg Config, backend engine.Backend) *FeedForward {
	f := &FeedForward{
		backend: backend,
		inner:   NewLinear(graph.Scope(scope, "inner"), cfg.DModel, cfg.DFF, backend),
		drop:    NewDropout(graph.Scope(scope, "dropout"), cfg.Dropout, backend),
		outer:   NewLinear(graph.Scope(scope, "outer"), cfg.DFF, cfg.DModel, backend),
	}
	f.node = graph.New(scope, f)
	return f
}

func (f *FeedForward) Compute(inputs ...engine.Tensor) engine.Tensor {
	h := f.inner.Evaluate(inputs[0])
	a := f.backend.ReLU(h)
	return f.outer.Evaluate(f.drop.Evaluate(a))
}

func (f *FeedForward) Evaluate(inputs ...engine.Tensor) engine.Tensor {
	return f.node.Evaluate(inputs...)
}

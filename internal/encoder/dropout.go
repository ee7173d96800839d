package encoder

import (
	"github.com/23skdu/longbow-bowyer/internal/engine"
	"github.com/23skdu/longbow-bowyer/internal/graph"
)

// Dropout supplies a masking rate to the engine. Whether masking actually
// happens is the engine's train/eval switch, not this layer's concern.
type Dropout struct {
	node    *graph.Node
	backend engine.Backend
	rate    float64
}

func NewDropout(scope string, rate float64, backend engine.Backend) *Dropout {
	d := &Dropout{backend: backend, rate: rate}
	d.node = graph.New(scope, d)
	return d
}

func (d *Dropout) Compute(inputs ...engine.Tensor) engine.Tensor {
	return d.backend.Dropout(inputs[0], d.rate)
}

func (d *Dropout) Evaluate(inputs ...engine.Tensor) engine.Tensor {
	return d.node.Evaluate(inputs...)
}

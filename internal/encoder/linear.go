package encoder

import (
	"github.com/23skdu/longbow-bowyer/internal/engine"
	"github.com/23skdu/longbow-bowyer/internal/graph"
)

// Linear applies an affine map X*W + b over the feature axis. The weight
// and bias are materialized by the engine under the layer's scope name.
type Linear struct {
	node  *graph.Node
	dense engine.Dense
}

func NewLinear(scope string, in, out int, backend engine.Backend) *Linear {
	l := &Linear{dense: backend.Dense(scope, in, out)}
	l.node = graph.New(scope, l)
	return l
}

func (l *Linear) Compute(inputs ...engine.Tensor) engine.Tensor {
	return l.dense.Apply(inputs[0])
}

func (l *Linear) Evaluate(inputs ...engine.Tensor) engine.Tensor {
	return l.node.Evaluate(inputs...)
}

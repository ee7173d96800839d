package encoder

import (
	"github.com/23skdu/longbow-bowyer/internal/engine"
	"github.com/23skdu/longbow-bowyer/internal/graph"
)

// normEps is added to the standard deviation (not the variance) for
// numerical stability.
const normEps = 1e-6

// LayerNorm standardizes each position's feature vector to zero mean and
// unit variance: (X - mean) / (std + eps). No learned scale or shift is
// applied. The per-row mean and std are retained for inspection.
type LayerNorm struct {
	node    *graph.Node
	backend engine.Backend

	// Diagnostics from the last computation; not consumed downstream.
	Mean engine.Tensor
	Std  engine.Tensor
}

func NewLayerNorm(scope string, backend engine.Backend) *LayerNorm {
	n := &LayerNorm{backend: backend}
	n.node = graph.New(scope, n)
	return n
}

func (n *LayerNorm) Compute(inputs ...engine.Tensor) engine.Tensor {
	x := inputs[0]

	mean, variance := n.backend.Moments(x)
	std := n.backend.Sqrt(variance)
	n.Mean, n.Std = mean, std

	centered := n.backend.Sub(x, mean)
	return n.backend.Div(centered, n.backend.AddScalar(std, normEps))
}

func (n *LayerNorm) Evaluate(inputs ...engine.Tensor) engine.Tensor {
	return n.node.Evaluate(inputs...)
}

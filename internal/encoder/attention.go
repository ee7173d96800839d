package encoder

import (
	"math"

	"github.com/23skdu/longbow-bowyer/internal/engine"
	"github.com/23skdu/longbow-bowyer/internal/graph"
)

// ScaledDotProduct computes softmax(Q*K^T / sqrt(d_k)) * V for a single
// attention head. Every query attends to every key; no masking is applied.
type ScaledDotProduct struct {
	node    *graph.Node
	backend engine.Backend
	scale   float64
	drop    *Dropout

	// Scores is the post-softmax attention distribution, retained for
	// inspection. Each row sums to 1 over the key axis.
	Scores engine.Tensor
}

func NewScaledDotProduct(scope string, dK int, rate float64, backend engine.Backend) *ScaledDotProduct {
	a := &ScaledDotProduct{
		backend: backend,
		scale:   1.0 / math.Sqrt(float64(dK)),
		drop:    NewDropout(graph.Scope(scope, "dropout"), rate, backend),
	}
	a.node = graph.New(scope, a)
	return a
}

// Compute expects q [B, n_q, d_k], k [B, n_k, d_k], v [B, n_k, d_v] and
// returns [B, n_q, d_v].
func (a *ScaledDotProduct) Compute(inputs ...engine.Tensor) engine.Tensor {
	q, k, v := inputs[0], inputs[1], inputs[2]

	dot := a.backend.MatMulT(q, k)
	scores := a.backend.Softmax(a.backend.Scale(dot, a.scale))
	a.Scores = scores

	dropped := a.drop.Evaluate(scores)
	return a.backend.MatMul(dropped, v)
}

func (a *ScaledDotProduct) Evaluate(inputs ...engine.Tensor) engine.Tensor {
	return a.node.Evaluate(inputs...)
}

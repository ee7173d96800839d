package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-bowyer/internal/engine"
)

// countingLayer records how often Compute runs.
type countingLayer struct {
	backend engine.Backend
	calls   int
}

func (c *countingLayer) Compute(inputs ...engine.Tensor) engine.Tensor {
	c.calls++
	return c.backend.Scale(inputs[0], 2.0)
}

func TestNodeMemoization(t *testing.T) {
	backend := engine.NewCPUBackend()
	layer := &countingLayer{backend: backend}
	node := New("test/double", layer)

	x := backend.NewTensor(1, 1, 2, []float64{1, 2})
	first := node.Evaluate(x)

	require.Equal(t, 1, layer.calls)
	require.Equal(t, []float64{2, 4}, first.ToHost())

	// Second call returns the identical cached tensor, even with a
	// different input.
	y := backend.NewTensor(1, 1, 2, []float64{100, 100})
	second := node.Evaluate(y)

	require.Equal(t, 1, layer.calls, "Compute must run exactly once")
	require.Same(t, first, second)
}

func TestNodeName(t *testing.T) {
	backend := engine.NewCPUBackend()
	node := New("encoder/layer_0/q", &countingLayer{backend: backend})

	require.Equal(t, "encoder/layer_0/q", node.Name())
}

func TestScope(t *testing.T) {
	require.Equal(t, "encoder", Scope("", "encoder"))
	require.Equal(t, "encoder/layer_0", Scope("encoder", "layer_0"))
	require.Equal(t, "encoder/layer_0/mha/head_1/q",
		Scope(Scope(Scope(Scope("encoder", "layer_0"), "mha"), "head_1"), "q"))
}

func TestKindOf(t *testing.T) {
	backend := engine.NewCPUBackend()
	require.Equal(t, "countingLayer", kindOf(&countingLayer{backend: backend}))
}

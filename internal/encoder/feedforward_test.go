package encoder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-bowyer/internal/engine"
)

func TestFeedForwardShape(t *testing.T) {
	backend := engine.NewCPUBackend()
	cfg := Config{Layers: 1, Dropout: 0, DModel: 4, Heads: 2, DFF: 16}

	ffwd := NewFeedForward("ffwd", cfg, backend)

	x := randomTensor(backend, 3, 5, 4, 8)
	out := ffwd.Evaluate(x)

	batch, rows, cols := out.Shape()
	require.Equal(t, 3, batch)
	require.Equal(t, 5, rows)
	require.Equal(t, 4, cols, "inner expansion must project back to d_model")
}

func TestFeedForwardZeroInput(t *testing.T) {
	backend := engine.NewCPUBackend()
	cfg := Config{Layers: 1, Dropout: 0, DModel: 4, Heads: 2, DFF: 8}

	ffwd := NewFeedForward("ffwd", cfg, backend)

	// Zero input with zero-initialized biases stays exactly zero through
	// both projections and the ReLU.
	x := backend.NewTensor(1, 2, 4, nil)
	out := ffwd.Evaluate(x)

	for _, v := range out.ToHost() {
		require.Equal(t, 0.0, v)
	}
}

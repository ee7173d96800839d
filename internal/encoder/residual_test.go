package encoder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-bowyer/internal/engine"
)

// passthrough stands in for a hosted sublayer.
type passthrough struct{}

func (passthrough) Evaluate(inputs ...engine.Tensor) engine.Tensor {
	return inputs[0]
}

func TestResidualNormPreNormOrdering(t *testing.T) {
	backend := engine.NewCPUBackend()

	factory := func(scope string) (Sublayer, error) {
		return passthrough{}, nil
	}
	block, err := NewResidualNorm("block", 0, factory, backend)
	require.NoError(t, err)

	x := randomTensor(backend, 1, 3, 8, 4)
	out := block.Evaluate(x)

	// With an identity sublayer the block reduces to X + LayerNorm(X):
	// the residual path carries the raw input, the norm runs before the
	// sublayer, never after.
	check := NewLayerNorm("check/norm", backend)
	expected := backend.Add(x, check.Evaluate(x))

	require.InDeltaSlice(t, expected.ToHost(), out.ToHost(), 1e-12)
}

func TestResidualNormPropagatesSublayerError(t *testing.T) {
	backend := engine.NewCPUBackend()
	cfg := Config{Layers: 1, Dropout: 0, DModel: 5, Heads: 3, DFF: 8}

	block, err := NewResidualNorm("block", cfg.Dropout, AttentionSublayer(cfg, backend), backend)
	require.Nil(t, block)

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
}

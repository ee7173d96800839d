package encoder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-bowyer/internal/engine"
)

func TestMultiHeadAttentionShape(t *testing.T) {
	backend := engine.NewCPUBackend()
	cfg := Config{Layers: 1, Dropout: 0, DModel: 6, Heads: 3, DFF: 12}

	mha, err := NewMultiHeadAttention("mha", cfg, backend)
	require.NoError(t, err)
	require.Len(t, mha.Heads(), 3)

	x := randomTensor(backend, 4, 3, 6, 1)
	out := mha.Evaluate(x)

	batch, rows, cols := out.Shape()
	require.Equal(t, 4, batch)
	require.Equal(t, 3, rows)
	require.Equal(t, 6, cols)
}

func TestMultiHeadAttentionIndivisibleHeads(t *testing.T) {
	backend := engine.NewCPUBackend()
	cfg := Config{Layers: 1, Dropout: 0, DModel: 5, Heads: 3, DFF: 8}

	mha, err := NewMultiHeadAttention("mha", cfg, backend)
	require.Nil(t, mha)
	require.Error(t, err)

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	require.Equal(t, 5, shapeErr.DModel)
	require.Equal(t, 3, shapeErr.Heads)
}

func TestMultiHeadAttentionHeadScores(t *testing.T) {
	backend := engine.NewCPUBackend()
	cfg := Config{Layers: 1, Dropout: 0, DModel: 4, Heads: 2, DFF: 8}

	mha, err := NewMultiHeadAttention("mha", cfg, backend)
	require.NoError(t, err)

	x := randomTensor(backend, 2, 5, 4, 2)
	mha.Evaluate(x)

	// Every head attends over the full sequence with a normalized
	// distribution.
	for hi, attn := range mha.Heads() {
		require.NotNil(t, attn.Scores, "head %d", hi)

		batch, rows, cols := attn.Scores.Shape()
		require.Equal(t, 2, batch)
		require.Equal(t, 5, rows)
		require.Equal(t, 5, cols)

		for b := 0; b < batch; b++ {
			for i := 0; i < rows; i++ {
				var sum float64
				for j := 0; j < cols; j++ {
					sum += attn.Scores.At(b, i, j)
				}
				require.InDelta(t, 1.0, sum, 1e-9, "head %d row (%d,%d)", hi, b, i)
			}
		}
	}
}

func TestMultiHeadAttentionDeterministic(t *testing.T) {
	cfg := Config{Layers: 1, Dropout: 0, DModel: 6, Heads: 2, DFF: 12}

	build := func() []float64 {
		backend := engine.NewCPUBackendWithSeed(99)
		mha, err := NewMultiHeadAttention("mha", cfg, backend)
		require.NoError(t, err)
		return mha.Evaluate(randomTensor(backend, 2, 4, 6, 7)).ToHost()
	}

	require.Equal(t, build(), build())
}

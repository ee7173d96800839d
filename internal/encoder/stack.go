package encoder

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-bowyer/internal/engine"
	"github.com/23skdu/longbow-bowyer/internal/graph"
)

// EncoderStack is the full model: N identically-shaped encoder layers with
// independently-scoped parameters, applied in construction order. With zero
// layers the stack is the identity map.
type EncoderStack struct {
	node    *graph.Node
	cfg     Config
	layers  []*EncoderLayer
	backend engine.Backend
}

func NewEncoderStack(cfg Config, backend engine.Backend) (*EncoderStack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &EncoderStack{cfg: cfg, backend: backend}
	for i := 0; i < cfg.Layers; i++ {
		layer, err := NewEncoderLayer(graph.Scope("encoder", fmt.Sprintf("layer_%d", i)), cfg, backend)
		if err != nil {
			return nil, err
		}
		s.layers = append(s.layers, layer)
	}
	s.node = graph.New("encoder", s)

	log.Debug().
		Str("backend", backend.Name()).
		Int("layers", cfg.Layers).
		Int("d_model", cfg.DModel).
		Int("heads", cfg.Heads).
		Int("d_ff", cfg.DFF).
		Msg("Constructed encoder stack")
	return s, nil
}

// Config returns the hyperparameters the stack was constructed with.
func (s *EncoderStack) Config() Config {
	return s.cfg
}

func (s *EncoderStack) Compute(inputs ...engine.Tensor) engine.Tensor {
	x := inputs[0]
	for _, layer := range s.layers {
		x = layer.Evaluate(x)
	}
	return x
}

// Build evaluates the encoder graph on an input of shape
// [batch, seq, d_model] and returns a tensor of the same shape.
//
// The output is memoized with the rest of the graph: a second Build call on
// the same instance returns the first result regardless of its argument.
// Construct a fresh EncoderStack per distinct input.
func (s *EncoderStack) Build(input engine.Tensor) engine.Tensor {
	return s.node.Evaluate(input)
}

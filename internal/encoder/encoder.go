package encoder

import (
	"github.com/23skdu/longbow-bowyer/internal/engine"
	"github.com/23skdu/longbow-bowyer/internal/graph"
)

// EncoderLayer is one Transformer block: a residual-wrapped multi-head
// self-attention followed by a residual-wrapped feed-forward projection.
type EncoderLayer struct {
	node *graph.Node
	attn *ResidualNorm
	ffwd *ResidualNorm
}

func NewEncoderLayer(scope string, cfg Config, backend engine.Backend) (*EncoderLayer, error) {
	attn, err := NewResidualNorm(graph.Scope(scope, "mha"), cfg.Dropout, AttentionSublayer(cfg, backend), backend)
	if err != nil {
		return nil, err
	}

	ffwd, err := NewResidualNorm(graph.Scope(scope, "ffwd"), cfg.Dropout, FeedForwardSublayer(cfg, backend), backend)
	if err != nil {
		return nil, err
	}

	l := &EncoderLayer{attn: attn, ffwd: ffwd}
	l.node = graph.New(scope, l)
	return l, nil
}

func (l *EncoderLayer) Compute(inputs ...engine.Tensor) engine.Tensor {
	return l.ffwd.Evaluate(l.attn.Evaluate(inputs[0]))
}

func (l *EncoderLayer) Evaluate(inputs ...engine.Tensor) engine.Tensor {
	return l.node.Evaluate(inputs...)
}

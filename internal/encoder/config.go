// Package encoder declares the computation graph of a bidirectional
// Transformer encoder: a stack of pre-norm self-attention and feed-forward
// blocks mapping [batch, seq, d_model] embeddings to contextualized
// embeddings of the same shape. It defines structure and parameter layout
// only; all numeric work is delegated to an engine.Backend.
package encoder

import "fmt"

// Config holds the encoder hyperparameters. All values are fixed at
// construction.
type Config struct {
	Layers  int     // number of encoder layers, >= 0
	Dropout float64 // dropout rate, [0, 1)
	DModel  int     // model (feature) dimension
	Heads   int     // attention head count, must divide DModel
	DFF     int     // feed-forward inner dimension
}

// DefaultMiniConfig returns a small configuration in BERT-Tiny proportions.
func DefaultMiniConfig() Config {
	return Config{
		Layers:  2,
		Dropout: 0.1,
		DModel:  128,
		Heads:   2,
		DFF:     512,
	}
}

// Validate checks the construction-time preconditions. The head split is
// reported as a *ShapeError so callers can match on it.
func (c Config) Validate() error {
	if c.Layers < 0 {
		return fmt.Errorf("config: layers must be >= 0, got %d", c.Layers)
	}
	if c.DModel <= 0 {
		return fmt.Errorf("config: d_model must be > 0, got %d", c.DModel)
	}
	if c.Heads <= 0 {
		return fmt.Errorf("config: heads must be > 0, got %d", c.Heads)
	}
	if c.DFF <= 0 {
		return fmt.Errorf("config: d_ff must be > 0, got %d", c.DFF)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("config: dropout must be in [0, 1), got %f", c.Dropout)
	}
	if c.DModel%c.Heads != 0 {
		return &ShapeError{DModel: c.DModel, Heads: c.Heads}
	}
	return nil
}

// ShapeError reports a model dimension that cannot be split evenly across
// attention heads.
type ShapeError struct {
	DModel int
	Heads  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("d_model %d is not divisible by %d heads", e.DModel, e.Heads)
}

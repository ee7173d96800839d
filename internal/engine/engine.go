package engine

// Tensor represents a batched matrix of shape [batch, rows, cols] owned by
// the numeric engine. The feature dimension is always the last axis.
type Tensor interface {
	// Shape returns the (batch, rows, cols) dimensions of the tensor.
	Shape() (int, int, int)

	// At returns the value at (b, i, j).
	// This is often slow and should be used for debugging or infrequent access.
	At(b, i, j int) float64

	// ToHost copies the data to a Go slice in row-major order.
	ToHost() []float64
}

// Dense is a named affine transform (weight matrix plus bias vector)
// materialized and owned by the engine.
type Dense interface {
	// Scope returns the parameter key this transform was materialized under.
	Scope() string

	// Apply computes x*W + b over the last axis: [batch, rows, in] -> [batch, rows, out].
	Apply(x Tensor) Tensor
}

// Backend creates tensors, materializes named parameters, and evaluates the
// primitive operations the model graph is declared against. All operations
// are pure: they return new tensors and never mutate their arguments.
type Backend interface {
	Name() string

	// NewTensor creates a [batch, rows, cols] tensor. A nil data slice
	// yields a zero tensor.
	NewTensor(batch, rows, cols int, data []float64) Tensor

	// Dense materializes a weight/bias pair under the given scope name.
	// The first call for a scope creates the parameters; every later call
	// with the same scope returns the same pair.
	Dense(scope string, in, out int) Dense

	// SetTraining toggles the train/eval switch. Dropout is a masking
	// operation while training and the identity otherwise.
	SetTraining(on bool)

	// MatMul computes the batched product a*b: [B,m,k] x [B,k,n] -> [B,m,n].
	MatMul(a, b Tensor) Tensor

	// MatMulT computes a*b^T, contracting the feature axis of both
	// operands: [B,m,k] x [B,n,k] -> [B,m,n].
	MatMulT(a, b Tensor) Tensor

	// Add computes a + b element-wise. Shapes must match.
	Add(a, b Tensor) Tensor

	// Sub computes a - b. When b has a single column it is broadcast
	// across the feature axis of a.
	Sub(a, b Tensor) Tensor

	// Div computes a / b with the same broadcast rule as Sub.
	Div(a, b Tensor) Tensor

	// Scale computes a * v element-wise.
	Scale(a Tensor, v float64) Tensor

	// AddScalar computes a + v element-wise.
	AddScalar(a Tensor, v float64) Tensor

	// Sqrt computes the element-wise square root.
	Sqrt(a Tensor) Tensor

	// Concat joins tensors along the feature axis. Batch and row
	// dimensions must match.
	Concat(parts ...Tensor) Tensor

	// Softmax normalizes each row of the last axis into a probability
	// distribution.
	Softmax(a Tensor) Tensor

	// Moments returns the per-row mean and variance over the last axis,
	// each of shape [batch, rows, 1].
	Moments(a Tensor) (mean, variance Tensor)

	// ReLU computes max(0, x) element-wise.
	ReLU(a Tensor) Tensor

	// Dropout zeroes elements with the given probability and rescales
	// survivors by 1/(1-rate) while training; identity in eval mode.
	Dropout(a Tensor, rate float64) Tensor
}

package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/23skdu/longbow-bowyer/internal/simd"
)

// ensure interface compliance
var _ Backend = (*CPUBackend)(nil)
var _ Tensor = (*cpuTensor)(nil)
var _ Dense = (*cpuDense)(nil)

// CPUBackend is the reference engine implementation. Matrix products run on
// gonum (BLAS-accelerated when built with cgo), row kernels on the simd
// package. Parameters are keyed by scope name and created exactly once.
type CPUBackend struct {
	mu       sync.Mutex
	params   map[string]*cpuDense
	rng      *rand.Rand
	training bool
}

func NewCPUBackend() *CPUBackend {
	return NewCPUBackendWithSeed(1)
}

// NewCPUBackendWithSeed creates a backend whose parameter initialization and
// dropout masking draw from a deterministic source.
func NewCPUBackendWithSeed(seed int64) *CPUBackend {
	return &CPUBackend{
		params: make(map[string]*cpuDense),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (b *CPUBackend) Name() string {
	return "CPU"
}

func (b *CPUBackend) SetTraining(on bool) {
	b.training = on
}

func (b *CPUBackend) NewTensor(batch, rows, cols int, data []float64) Tensor {
	size := batch * rows * cols
	t := &cpuTensor{batch: batch, rows: rows, cols: cols}

	if data == nil {
		t.data = make([]float64, size)
	} else {
		if len(data) != size {
			panic("NewTensor: provided data length does not match dimensions")
		}
		t.data = make([]float64, size)
		copy(t.data, data)
	}

	return t
}

// Dense returns the parameter pair registered under scope, materializing it
// on first request. Weights get Xavier/Glorot initialization, biases zeros.
func (b *CPUBackend) Dense(scope string, in, out int) Dense {
	b.mu.Lock()
	defer b.mu.Unlock()

	if d, ok := b.params[scope]; ok {
		return d
	}

	d := &cpuDense{
		scope:  scope,
		in:     in,
		out:    out,
		weight: mat.NewDense(in, out, xavier(b.rng, in, out)),
		bias:   make([]float64, out),
	}
	b.params[scope] = d

	log.Debug().Str("scope", scope).Int("in", in).Int("out", out).Msg("Materialized dense parameters")
	return d
}

// xavier generates Xavier/Glorot uniform initial weight values.
func xavier(rng *rand.Rand, in, out int) []float64 {
	limit := math.Sqrt(6.0 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return data
}

func (b *CPUBackend) MatMul(x, y Tensor) Tensor {
	return b.matmul(x, y, false)
}

func (b *CPUBackend) MatMulT(x, y Tensor) Tensor {
	return b.matmul(x, y, true)
}

func (b *CPUBackend) matmul(x, y Tensor, transB bool) Tensor {
	xt, yt := toCPU(x), toCPU(y)
	if xt.batch != yt.batch {
		panic(fmt.Sprintf("matmul: batch mismatch %d vs %d", xt.batch, yt.batch))
	}

	inner, n := yt.rows, yt.cols
	if transB {
		inner, n = yt.cols, yt.rows
	}
	if xt.cols != inner {
		panic(fmt.Sprintf("matmul: A cols (%d) != B rows (%d)", xt.cols, inner))
	}

	out := newCPUTensor(xt.batch, xt.rows, n)
	for i := 0; i < xt.batch; i++ {
		xm := mat.NewDense(xt.rows, xt.cols, xt.batchSlice(i))
		ym := mat.NewDense(yt.rows, yt.cols, yt.batchSlice(i))
		om := mat.NewDense(xt.rows, n, out.batchSlice(i))
		if transB {
			om.Mul(xm, ym.T())
		} else {
			om.Mul(xm, ym)
		}
	}
	return out
}

func (b *CPUBackend) Add(x, y Tensor) Tensor {
	xt, yt := toCPU(x), toCPU(y)
	sameShape("Add", xt, yt)

	out := xt.clone()
	simd.VecAdd(out.data, yt.data)
	return out
}

func (b *CPUBackend) Sub(x, y Tensor) Tensor {
	return broadcastOp("Sub", toCPU(x), toCPU(y), func(a, v float64) float64 { return a - v })
}

func (b *CPUBackend) Div(x, y Tensor) Tensor {
	return broadcastOp("Div", toCPU(x), toCPU(y), func(a, v float64) float64 { return a / v })
}

func (b *CPUBackend) Scale(x Tensor, v float64) Tensor {
	out := toCPU(x).clone()
	for i := range out.data {
		out.data[i] *= v
	}
	return out
}

func (b *CPUBackend) AddScalar(x Tensor, v float64) Tensor {
	out := toCPU(x).clone()
	for i := range out.data {
		out.data[i] += v
	}
	return out
}

func (b *CPUBackend) Sqrt(x Tensor) Tensor {
	out := toCPU(x).clone()
	for i, v := range out.data {
		out.data[i] = math.Sqrt(v)
	}
	return out
}

func (b *CPUBackend) Concat(parts ...Tensor) Tensor {
	if len(parts) == 0 {
		panic("Concat: no tensors given")
	}

	first := toCPU(parts[0])
	total := 0
	for _, p := range parts {
		pt := toCPU(p)
		if pt.batch != first.batch || pt.rows != first.rows {
			panic("Concat: batch/row mismatch")
		}
		total += pt.cols
	}

	out := newCPUTensor(first.batch, first.rows, total)
	for bi := 0; bi < first.batch; bi++ {
		for r := 0; r < first.rows; r++ {
			off := (bi*first.rows + r) * total
			for _, p := range parts {
				pt := toCPU(p)
				row := pt.data[(bi*pt.rows+r)*pt.cols : (bi*pt.rows+r+1)*pt.cols]
				copy(out.data[off:off+pt.cols], row)
				off += pt.cols
			}
		}
	}
	return out
}

func (b *CPUBackend) Softmax(x Tensor) Tensor {
	out := toCPU(x).clone()
	for r := 0; r < out.batch*out.rows; r++ {
		simd.SoftmaxFast(out.data[r*out.cols : (r+1)*out.cols])
	}
	return out
}

func (b *CPUBackend) Moments(x Tensor) (Tensor, Tensor) {
	xt := toCPU(x)
	mean := newCPUTensor(xt.batch, xt.rows, 1)
	variance := newCPUTensor(xt.batch, xt.rows, 1)

	for r := 0; r < xt.batch*xt.rows; r++ {
		row := xt.data[r*xt.cols : (r+1)*xt.cols]

		var sum float64
		for _, v := range row {
			sum += v
		}
		mu := sum / float64(xt.cols)

		var varSum float64
		for _, v := range row {
			diff := v - mu
			varSum += diff * diff
		}

		mean.data[r] = mu
		variance.data[r] = varSum / float64(xt.cols)
	}
	return mean, variance
}

func (b *CPUBackend) ReLU(x Tensor) Tensor {
	out := toCPU(x).clone()
	simd.Relu(out.data)
	return out
}

func (b *CPUBackend) Dropout(x Tensor, rate float64) Tensor {
	if !b.training || rate == 0 {
		return x
	}
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("Dropout: invalid rate %f", rate))
	}

	out := toCPU(x).clone()
	scale := 1.0 / (1.0 - rate)
	for i, v := range out.data {
		if b.rng.Float64() < rate {
			out.data[i] = 0
		} else {
			out.data[i] = v * scale
		}
	}
	return out
}

type cpuTensor struct {
	batch int
	rows  int
	cols  int
	data  []float64
}

func newCPUTensor(batch, rows, cols int) *cpuTensor {
	return &cpuTensor{
		batch: batch,
		rows:  rows,
		cols:  cols,
		data:  make([]float64, batch*rows*cols),
	}
}

func (t *cpuTensor) Shape() (int, int, int) {
	return t.batch, t.rows, t.cols
}

func (t *cpuTensor) At(b, i, j int) float64 {
	return t.data[(b*t.rows+i)*t.cols+j]
}

func (t *cpuTensor) ToHost() []float64 {
	out := make([]float64, len(t.data))
	copy(out, t.data)
	return out
}

func (t *cpuTensor) clone() *cpuTensor {
	out := &cpuTensor{batch: t.batch, rows: t.rows, cols: t.cols}
	out.data = make([]float64, len(t.data))
	copy(out.data, t.data)
	return out
}

// batchSlice returns the backing data of one batch element.
func (t *cpuTensor) batchSlice(i int) []float64 {
	size := t.rows * t.cols
	return t.data[i*size : (i+1)*size]
}

func toCPU(t Tensor) *cpuTensor {
	ct, ok := t.(*cpuTensor)
	if !ok {
		panic("tensor from a different backend")
	}
	return ct
}

func sameShape(op string, a, b *cpuTensor) {
	if a.batch != b.batch || a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("%s: shape mismatch [%d,%d,%d] vs [%d,%d,%d]",
			op, a.batch, a.rows, a.cols, b.batch, b.rows, b.cols))
	}
}

// broadcastOp applies f element-wise; a single-column right operand is
// broadcast across the feature axis.
func broadcastOp(op string, a, v *cpuTensor, f func(float64, float64) float64) Tensor {
	if v.cols == 1 && a.batch == v.batch && a.rows == v.rows {
		out := a.clone()
		for r := 0; r < a.batch*a.rows; r++ {
			val := v.data[r]
			row := out.data[r*a.cols : (r+1)*a.cols]
			for j := range row {
				row[j] = f(row[j], val)
			}
		}
		return out
	}

	sameShape(op, a, v)
	out := a.clone()
	for i := range out.data {
		out.data[i] = f(out.data[i], v.data[i])
	}
	return out
}

type cpuDense struct {
	scope  string
	in     int
	out    int
	weight *mat.Dense
	bias   []float64
}

func (d *cpuDense) Scope() string {
	return d.scope
}

func (d *cpuDense) Apply(x Tensor) Tensor {
	xt := toCPU(x)
	if xt.cols != d.in {
		panic(fmt.Sprintf("Dense %s: input cols %d, want %d", d.scope, xt.cols, d.in))
	}

	out := newCPUTensor(xt.batch, xt.rows, d.out)
	for i := 0; i < xt.batch; i++ {
		xm := mat.NewDense(xt.rows, xt.cols, xt.batchSlice(i))
		om := mat.NewDense(xt.rows, d.out, out.batchSlice(i))
		om.Mul(xm, d.weight)
	}

	for r := 0; r < xt.batch*xt.rows; r++ {
		simd.VecAdd(out.data[r*d.out:(r+1)*d.out], d.bias)
	}
	return out
}

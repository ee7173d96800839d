package simd

import (
	"math"
	"testing"
)

func TestVecAdd(t *testing.T) {
	dst := []float64{1, 2, 3, 4, 5}
	src := []float64{10, 20, 30, 40, 50}
	expected := []float64{11, 22, 33, 44, 55}

	VecAdd(dst, src)

	for i, v := range dst {
		if v != expected[i] {
			t.Errorf("VecAdd(%d) = %f, want %f", i, v, expected[i])
		}
	}
}

func TestExpFast(t *testing.T) {
	inputs := []float64{-10, -2.5, -0.1, 0, 0.1, 1, 2.5, 10}

	for _, x := range inputs {
		got := ExpFast(x)
		want := math.Exp(x)
		relErr := math.Abs(got-want) / want
		if relErr > 0.01 {
			t.Errorf("ExpFast(%f) = %f, want %f (rel err %f)", x, got, want, relErr)
		}
	}
}

func TestSoftmaxFast(t *testing.T) {
	row := []float64{1, 2, 3, 4}
	SoftmaxFast(row)

	var sum float64
	for _, v := range row {
		if v <= 0 || v >= 1 {
			t.Errorf("SoftmaxFast produced out-of-range probability %f", v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("SoftmaxFast row sums to %f, want 1", sum)
	}

	// Monotonic inputs must give monotonic probabilities
	for i := 1; i < len(row); i++ {
		if row[i] <= row[i-1] {
			t.Errorf("SoftmaxFast not monotonic at %d: %f <= %f", i, row[i], row[i-1])
		}
	}
}

func TestSoftmaxFastLargeValues(t *testing.T) {
	// Max subtraction must keep large magnitudes finite
	row := []float64{1000, 1001, 1002}
	SoftmaxFast(row)

	var sum float64
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("SoftmaxFast produced non-finite value %f", v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("SoftmaxFast row sums to %f, want 1", sum)
	}
}

func TestRelu(t *testing.T) {
	data := []float64{-2, -0.5, 0, 0.5, 2}
	expected := []float64{0, 0, 0, 0.5, 2}

	Relu(data)

	for i, v := range data {
		if v != expected[i] {
			t.Errorf("Relu(%d) = %f, want %f", i, v, expected[i])
		}
	}
}

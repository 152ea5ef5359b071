package autodiff_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/textmatch/internal/autodiff"
	"github.com/born-ml/textmatch/internal/backend/cpu"
	"github.com/born-ml/textmatch/internal/tensor"
)

type gradCase struct {
	name     string
	shapes   []tensor.Shape
	positive bool // draw inputs from (0.2, 1.2) instead of (-1, 1)
	f        func(xs []*tensor.Tensor) *tensor.Tensor
}

func build(t *testing.T, data [][]float64, shapes []tensor.Shape, b tensor.Backend) []*tensor.Tensor {
	t.Helper()
	xs := make([]*tensor.Tensor, len(data))
	for i := range data {
		x, err := tensor.FromSlice(data[i], shapes[i], b)
		require.NoError(t, err)
		xs[i] = x
	}
	return xs
}

// checkGradients compares the tape gradients of Σ w ⊙ f(xs) against central
// differences, for a fixed random weighting w.
func checkGradients(t *testing.T, tc gradCase) {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	data := make([][]float64, len(tc.shapes))
	for i, s := range tc.shapes {
		data[i] = make([]float64, s.NumElements())
		for j := range data[i] {
			if tc.positive {
				data[i][j] = 0.2 + rng.Float64()
			} else {
				data[i][j] = 2*rng.Float64() - 1
			}
		}
	}

	plain := cpu.New()
	outShape := tc.f(build(t, data, tc.shapes, plain)).Shape()
	weights := make([]float64, outShape.NumElements())
	for i := range weights {
		weights[i] = 2*rng.Float64() - 1
	}
	objective := func(b tensor.Backend, xs []*tensor.Tensor) *tensor.Tensor {
		w, err := tensor.FromSlice(weights, outShape, b)
		require.NoError(t, err)
		return tc.f(xs).Mul(w).Sum()
	}

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	xs := build(t, data, tc.shapes, backend)
	grads := autodiff.Backward(objective(backend, xs), backend)

	const h = 1e-6
	for i, x := range xs {
		g, ok := grads[x.Raw()]
		require.True(t, ok, "%s: no gradient for input %d", tc.name, i)
		require.Equal(t, tc.shapes[i], g.Shape(), "%s input %d", tc.name, i)

		numeric := make([]float64, len(data[i]))
		for j := range data[i] {
			orig := data[i][j]
			data[i][j] = orig + h
			plus := objective(plain, build(t, data, tc.shapes, plain)).At(0)
			data[i][j] = orig - h
			minus := objective(plain, build(t, data, tc.shapes, plain)).At(0)
			data[i][j] = orig
			numeric[j] = (plus - minus) / (2 * h)
		}
		assert.InDeltaSlice(t, numeric, g.Data(), 1e-5, "%s input %d", tc.name, i)
	}
}

func TestGradients(t *testing.T) {
	cases := []gradCase{
		{name: "add", shapes: []tensor.Shape{{2, 3}, {2, 3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Add(x[1]) }},
		{name: "add broadcast row", shapes: []tensor.Shape{{2, 3}, {1, 3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Add(x[1]) }},
		{name: "add broadcast rank", shapes: []tensor.Shape{{2, 2, 3}, {3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Add(x[1]) }},
		{name: "sub broadcast column", shapes: []tensor.Shape{{2, 1}, {2, 3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Sub(x[1]) }},
		{name: "mul", shapes: []tensor.Shape{{3, 2}, {3, 2}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Mul(x[1]) }},
		{name: "mul broadcast channels", shapes: []tensor.Shape{{2, 3, 2, 2}, {1, 3, 1, 1}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Mul(x[1]) }},
		{name: "square", shapes: []tensor.Shape{{4}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Mul(x[0]) }},
		{name: "matmul", shapes: []tensor.Shape{{2, 3}, {3, 4}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].MatMul(x[1]) }},
		{name: "transpose", shapes: []tensor.Shape{{2, 3}, {2, 4}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Transpose().MatMul(x[1]) }},
		{name: "reshape", shapes: []tensor.Shape{{2, 3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Reshape(3, 2).MatMul(x[0]) }},
		{name: "narrow", shapes: []tensor.Shape{{2, 4, 3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Narrow(1, 1, 2) }},
		{name: "cat", shapes: []tensor.Shape{{2, 3}, {2, 1}},
			f: func(x []*tensor.Tensor) *tensor.Tensor {
				return tensor.Cat([]*tensor.Tensor{x[0], x[1], x[0]}, 1)
			}},
		{name: "cat dim 0", shapes: []tensor.Shape{{1, 3}, {2, 3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return tensor.Cat([]*tensor.Tensor{x[0], x[1]}, 0) }},
		{name: "scalar", shapes: []tensor.Shape{{3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].MulScalar(-2.5).AddScalar(1) }},
		{name: "exp", shapes: []tensor.Shape{{3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Exp() }},
		{name: "log", shapes: []tensor.Shape{{3}}, positive: true,
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Log() }},
		{name: "relu", shapes: []tensor.Shape{{6}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].ReLU() }},
		{name: "sigmoid", shapes: []tensor.Shape{{4}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Sigmoid() }},
		{name: "tanh", shapes: []tensor.Shape{{4}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Tanh() }},
		{name: "softmax rows", shapes: []tensor.Shape{{2, 3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Softmax(1) }},
		{name: "softmax groups", shapes: []tensor.Shape{{4, 3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Softmax(0) }},
		{name: "sum", shapes: []tensor.Shape{{2, 2}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Sum() }},
		{name: "conv2d", shapes: []tensor.Shape{{2, 2, 4, 4}, {3, 2, 3, 3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Conv2D(x[1], 1, 0) }},
		{name: "conv2d stride padding", shapes: []tensor.Shape{{1, 1, 5, 5}, {2, 1, 3, 3}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].Conv2D(x[1], 2, 1) }},
		{name: "maxpool2d", shapes: []tensor.Shape{{1, 2, 4, 4}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].MaxPool2D(2, 2) }},
		{name: "maxpool2d floor", shapes: []tensor.Shape{{1, 1, 7, 7}},
			f: func(x []*tensor.Tensor) *tensor.Tensor { return x[0].MaxPool2D(3, 3) }},
		{name: "lstm gate", shapes: []tensor.Shape{{1, 4}, {1, 4}, {1, 4}},
			f: func(x []*tensor.Tensor) *tensor.Tensor {
				// c' = σ(f)⊙c + σ(i)⊙tanh(g)
				return x[0].Sigmoid().Mul(x[2]).Add(x[1].Sigmoid().Mul(x[1].Tanh()))
			}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) { checkGradients(t, tc) })
	}
}

func TestBackward_Square(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	x, err := tensor.FromSlice([]float64{2, -3}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	y := x.Mul(x).Sum()
	grads := autodiff.Backward(y, backend)
	assert.Equal(t, []float64{4, -6}, grads[x.Raw()].Data())
}

func TestBackward_UnusedTensorHasNoGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	x := tensor.Ones(tensor.Shape{2}, backend)
	unused := tensor.Ones(tensor.Shape{2}, backend)

	grads := autodiff.Backward(x.MulScalar(3).Sum(), backend)
	assert.Equal(t, []float64{3, 3}, grads[x.Raw()].Data())
	_, ok := grads[unused.Raw()]
	assert.False(t, ok)
}

func TestBackward_PanicsWithoutRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := tensor.Ones(tensor.Shape{2}, backend)
	y := x.Mul(x).Sum()

	assert.Equal(t, 0, backend.Tape().NumOps())
	assert.Panics(t, func() { autodiff.Backward(y, backend) })
}

func TestTape(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	assert.False(t, tape.IsRecording())

	tape.StartRecording()
	x := tensor.Ones(tensor.Shape{3}, backend)
	x.Add(x).Tanh()
	assert.Equal(t, 2, tape.NumOps())

	tape.StopRecording()
	x.Exp()
	assert.Equal(t, 2, tape.NumOps())

	tape.Clear()
	assert.Equal(t, 0, tape.NumOps())
	assert.False(t, tape.IsRecording())
}

func TestTape_MaxPool2DFollowsRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := tensor.Ones(tensor.Shape{1, 1, 4, 4}, backend)

	x.MaxPool2D(2, 2)
	assert.Equal(t, 0, backend.Tape().NumOps())

	backend.Tape().StartRecording()
	x.MaxPool2D(2, 2)
	assert.Equal(t, 1, backend.Tape().NumOps())
}

func TestAutodiffBackend_Metadata(t *testing.T) {
	inner := cpu.New()
	backend := autodiff.New(inner)
	assert.Equal(t, "Autodiff(CPU)", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
	assert.Same(t, inner, backend.Inner())
}

// Forward results on the decorator match the plain backend exactly.
func TestAutodiffBackend_Transparent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	plain := cpu.New()
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	a := tensor.Randn(tensor.Shape{1, 2, 5, 5}, rng, plain)
	k := tensor.Randn(tensor.Shape{3, 2, 3, 3}, rng, plain)
	want := a.Conv2D(k, 1, 0).ReLU().MaxPool2D(3, 3).Softmax(1)
	got := tensor.New(a.Raw(), backend).Conv2D(tensor.New(k.Raw(), backend), 1, 0).ReLU().MaxPool2D(3, 3).Softmax(1)
	assert.Equal(t, want.Data(), got.Data())
}

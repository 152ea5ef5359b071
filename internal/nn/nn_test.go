package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/textmatch/internal/autodiff"
	"github.com/born-ml/textmatch/internal/backend/cpu"
	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/tensor"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func fromSlice(t *testing.T, data []float64, shape tensor.Shape, backend tensor.Backend) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, backend)
	require.NoError(t, err)
	return x
}

func fill(p *nn.Parameter, values ...float64) {
	data := p.Tensor().Data()
	for i := range data {
		data[i] = values[i%len(values)]
	}
}

// TestParameter tests Parameter creation and methods.
func TestParameter(t *testing.T) {
	backend := cpu.New()
	data := fromSlice(t, []float64{1, 2, 3}, tensor.Shape{3}, backend)
	param := nn.NewParameter("test_param", data)

	assert.Equal(t, "test_param", param.Name())
	assert.Same(t, data, param.Tensor())
	assert.Nil(t, param.Grad())

	grad := tensor.Ones(tensor.Shape{3}, backend)
	param.SetGrad(grad)
	assert.Same(t, grad, param.Grad())

	param.ZeroGrad()
	assert.Nil(t, param.Grad())
}

func TestLinear_Forward(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(2, 2, newRNG(), backend)
	copy(layer.Weight().Tensor().Data(), []float64{1, 2, 3, 4})
	copy(layer.Bias().Tensor().Data(), []float64{0.5, -0.5})

	x := fromSlice(t, []float64{1, 1, 2, 0}, tensor.Shape{2, 2}, backend)
	y := layer.Forward(x)

	require.Equal(t, tensor.Shape{2, 2}, y.Shape())
	// Row 0: [1+2, 3+4] + b, row 1: [2, 6] + b
	assert.InDeltaSlice(t, []float64{3.5, 6.5, 2.5, 5.5}, y.Data(), 1e-12)
	assert.Len(t, layer.Parameters(), 2)
}

func TestLinear_ShapeMismatchPanics(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(3, 2, newRNG(), backend)
	x := tensor.Zeros(tensor.Shape{1, 4}, backend)

	assert.PanicsWithError(t,
		tensor.NewShapeError("linear", "expected input [batch, 3], got [1 4]").Error(),
		func() { layer.Forward(x) })
}

func TestLinear_Gradients(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	layer := nn.NewLinear(2, 3, newRNG(), backend)
	x := fromSlice(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)

	loss := layer.Forward(x).Sum()
	grads := autodiff.Backward(loss, backend)
	nn.AttachGrads(layer.Parameters(), grads)

	// d(Σ y)/dW[o, i] = Σ_b x[b, i]
	wGrad := layer.Weight().Grad()
	require.NotNil(t, wGrad)
	assert.InDeltaSlice(t, []float64{4, 6, 4, 6, 4, 6}, wGrad.Data(), 1e-12)

	// d(Σ y)/db[o] = batch size
	bGrad := layer.Bias().Grad()
	require.NotNil(t, bGrad)
	assert.InDeltaSlice(t, []float64{2, 2, 2}, bGrad.Data(), 1e-12)
}

func TestConv2D_ForwardWithBias(t *testing.T) {
	backend := cpu.New()
	conv := nn.NewConv2D(1, 1, 2, 2, 1, 0, true, newRNG(), backend)
	fill(conv.Weight(), 1)
	fill(conv.Bias(), 1)

	input := fromSlice(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3}, backend)
	output := conv.Forward(input)

	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.InDeltaSlice(t, []float64{13, 17, 25, 29}, output.Data(), 1e-12)
	assert.Equal(t, [2]int{2, 2}, conv.ComputeOutputSize(3, 3))
}

func TestConv2D_NoBias(t *testing.T) {
	conv := nn.NewConv2D(3, 1, 3, 3, 1, 0, false, newRNG(), cpu.New())
	assert.Len(t, conv.Parameters(), 1)
	assert.Nil(t, conv.Bias())
	assert.Equal(t, tensor.Shape{1, 3, 3, 3}, conv.Weight().Tensor().Shape())
}

func TestMaxPool2D(t *testing.T) {
	backend := cpu.New()
	pool := nn.NewMaxPool2D(2, 0)
	input := fromSlice(t, []float64{
		1, 5, 2, 0,
		3, 4, 8, 1,
		0, 0, 1, 1,
		9, 0, 1, 2,
	}, tensor.Shape{1, 1, 4, 4}, backend)

	output := pool.Forward(input)
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.Equal(t, []float64{5, 8, 9, 2}, output.Data())
	assert.Nil(t, pool.Parameters())
	assert.Equal(t, 18, nn.NewMaxPool2D(3, 3).ComputeOutputSize(54))
}

func TestActivations(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float64{-1, 0, 2, 1}, tensor.Shape{2, 2}, backend)

	assert.Equal(t, []float64{0, 0, 2, 1}, nn.NewReLU().Forward(x).Data())
	assert.InDelta(t, 1/(1+math.Exp(1)), nn.NewSigmoid().Forward(x).At(0, 0), 1e-12)
	assert.InDelta(t, math.Tanh(2), nn.NewTanh().Forward(x).At(1, 0), 1e-12)

	s := nn.NewSoftmax(1).Forward(x)
	assert.InDelta(t, 1.0, s.At(0, 0)+s.At(0, 1), 1e-12)
	assert.InDelta(t, 1.0, s.At(1, 0)+s.At(1, 1), 1e-12)
	assert.InDelta(t, math.Exp(2)/(math.Exp(2)+math.Exp(1)), s.At(1, 0), 1e-12)
}

func TestDropout(t *testing.T) {
	backend := cpu.New()
	x := tensor.Ones(tensor.Shape{4, 50}, backend)

	t.Run("eval is identity", func(t *testing.T) {
		d := nn.NewDropout(0.5, newRNG())
		assert.False(t, d.Training())
		assert.Same(t, x, d.Forward(x))
	})

	t.Run("training scales survivors", func(t *testing.T) {
		d := nn.NewDropout(0.5, newRNG())
		d.SetTraining(true)
		out := d.Forward(x)
		zeros := 0
		for _, v := range out.Data() {
			if v == 0 {
				zeros++
				continue
			}
			assert.InDelta(t, 2.0, v, 1e-12)
		}
		assert.Greater(t, zeros, 0)
		assert.Less(t, zeros, x.NumElements())
	})

	t.Run("rate one drops everything", func(t *testing.T) {
		d := nn.NewDropout(1, newRNG())
		d.SetTraining(true)
		for _, v := range d.Forward(x).Data() {
			assert.Zero(t, v)
		}
	})

	assert.Panics(t, func() { nn.NewDropout(1.5, newRNG()) })
}

func TestLSTM_KnownValues(t *testing.T) {
	backend := cpu.New()
	const hidden = 2
	lstm := nn.NewLSTM(3, hidden, newRNG(), backend)

	// Zero weights; bias_ih drives only the cell candidate g to 1.
	params := lstm.Parameters()
	require.Len(t, params, 4)
	for _, p := range params {
		fill(p, 0)
	}
	gBias := params[1].Tensor().Data()
	for k := 2 * hidden; k < 3*hidden; k++ {
		gBias[k] = 1
	}

	input := tensor.Randn(tensor.Shape{1, 2, 3}, newRNG(), backend)
	output, h, c := lstm.Run(input)
	require.Equal(t, tensor.Shape{1, 2, hidden}, output.Shape())

	c1 := 0.5 * math.Tanh(1)
	h1 := 0.5 * math.Tanh(c1)
	c2 := 0.5*c1 + 0.5*math.Tanh(1)
	h2 := 0.5 * math.Tanh(c2)

	assert.InDeltaSlice(t, []float64{h1, h1, h2, h2}, output.Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{h2, h2}, h.Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{c2, c2}, c.Data(), 1e-12)
}

func TestLSTM_BatchRowsAreIndependent(t *testing.T) {
	backend := cpu.New()
	lstm := nn.NewLSTM(4, 3, newRNG(), backend)
	batch := tensor.Randn(tensor.Shape{2, 5, 4}, rand.New(rand.NewSource(11)), backend)

	joint := lstm.Forward(batch)
	for b := 0; b < 2; b++ {
		alone := lstm.Forward(batch.Narrow(0, b, 1))
		assert.InDeltaSlice(t, alone.Data(), joint.Narrow(0, b, 1).Data(), 1e-12, "row %d", b)
	}
}

func TestLSTM_RejectsWrongInput(t *testing.T) {
	lstm := nn.NewLSTM(4, 3, newRNG(), cpu.New())
	var err error
	func() {
		defer tensor.Recover(&err)
		lstm.Forward(tensor.Zeros(tensor.Shape{2, 5, 3}, cpu.New()))
	}()
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestBiLSTM_Directions(t *testing.T) {
	backend := cpu.New()
	const hidden = 3
	bi := nn.NewBiLSTM(4, hidden, newRNG(), backend)
	input := tensor.Randn(tensor.Shape{1, 3, 4}, rand.New(rand.NewSource(5)), backend)

	output := bi.Forward(input)
	require.Equal(t, tensor.Shape{1, 3, 2 * hidden}, output.Shape())
	assert.Len(t, bi.Parameters(), 8)

	// The backward half at the last step has read only x_{T-1}.
	last := input.Narrow(1, 2, 1)
	single := bi.Forward(last)
	assert.InDeltaSlice(t,
		single.Narrow(2, hidden, hidden).Data(),
		output.Narrow(1, 2, 1).Narrow(2, hidden, hidden).Data(), 1e-12)

	// The forward half at the first step has read only x_0.
	first := bi.Forward(input.Narrow(1, 0, 1))
	assert.InDeltaSlice(t,
		first.Narrow(2, 0, hidden).Data(),
		output.Narrow(1, 0, 1).Narrow(2, 0, hidden).Data(), 1e-12)
}

func TestBilinear_Pairwise(t *testing.T) {
	backend := cpu.New()
	bl := nn.NewBilinear(2, 2, 2, newRNG(), backend)
	// T_0 = I, T_1 = [[0, 1], [0, 0]]
	copy(bl.Weight().Tensor().Data(), []float64{1, 0, 0, 1, 0, 1, 0, 0})

	a := fromSlice(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	b := fromSlice(t, []float64{1, 0, 0, 1}, tensor.Shape{2, 2}, backend)

	s := bl.Pairwise(a, b)
	require.Equal(t, tensor.Shape{4, 2}, s.Shape())
	assert.InDeltaSlice(t, []float64{
		1, 0, // (0, 0)
		2, 1, // (0, 1)
		3, 0, // (1, 0)
		4, 3, // (1, 1)
	}, s.Data(), 1e-12)
}

func TestFeedForward(t *testing.T) {
	backend := cpu.New()
	ff := nn.NewFeedForward([]int{8, 4, 3, 2}, newRNG(), backend)
	assert.Len(t, ff.Layers(), 3)
	assert.Len(t, ff.Parameters(), 6)
	assert.Equal(t, 8*4+4+4*3+3+3*2+2, nn.CountParameters(ff.Parameters()))

	out := ff.Forward(tensor.Ones(tensor.Shape{5, 8}, backend))
	assert.Equal(t, tensor.Shape{5, 2}, out.Shape())
}

func TestCrossEntropy(t *testing.T) {
	backend := cpu.New()
	probs := fromSlice(t, []float64{0.25, 0.75, 0.5, 0.5}, tensor.Shape{2, 2}, backend)

	loss, err := nn.CrossEntropy(probs, []int{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, -(math.Log(0.75)+math.Log(0.5))/2, loss.Data()[0], 1e-9)

	_, err = nn.CrossEntropy(probs, []int{2, 0})
	assert.Error(t, err)

	_, err = nn.CrossEntropy(probs, []int{1})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestBinaryCrossEntropy(t *testing.T) {
	backend := cpu.New()
	probs := fromSlice(t, []float64{0.8, 0.4}, tensor.Shape{1, 2}, backend)
	targets := fromSlice(t, []float64{1, 0}, tensor.Shape{1, 2}, backend)

	loss, err := nn.BinaryCrossEntropy(probs, targets)
	require.NoError(t, err)
	assert.InDelta(t, -(math.Log(0.8)+math.Log(0.6))/2, loss.Data()[0], 1e-9)

	_, err = nn.BinaryCrossEntropy(probs, tensor.Zeros(tensor.Shape{2}, backend))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

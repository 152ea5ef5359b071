package optim_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/textmatch/internal/autodiff"
	"github.com/born-ml/textmatch/internal/backend/cpu"
	"github.com/born-ml/textmatch/internal/config"
	"github.com/born-ml/textmatch/internal/matcher"
	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/optim"
	"github.com/born-ml/textmatch/internal/tensor"
)

func scalarParam(t *testing.T, name string, v float64) *nn.Parameter {
	t.Helper()
	x, err := tensor.FromSlice([]float64{v}, tensor.Shape{1}, cpu.New())
	require.NoError(t, err)
	return nn.NewParameter(name, x)
}

func gradOf(t *testing.T, p *nn.Parameter, g float64) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	raw, err := tensor.RawFromSlice([]float64{g}, tensor.Shape{1}, tensor.CPU)
	require.NoError(t, err)
	return map[*tensor.RawTensor]*tensor.RawTensor{p.Tensor().Raw(): raw}
}

func TestSGD_SimpleUpdate(t *testing.T) {
	p := scalarParam(t, "x", 2)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})

	opt.Step(gradOf(t, p, 1))
	assert.InDelta(t, 1.9, p.Tensor().At(0), 1e-12)
}

func TestSGD_WithMomentum(t *testing.T) {
	p := scalarParam(t, "x", 1)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// v1 = 1, x1 = 0.9
	opt.Step(gradOf(t, p, 1))
	assert.InDelta(t, 0.9, p.Tensor().At(0), 1e-12)

	// v2 = 0.9 + 1 = 1.9, x2 = 0.9 - 0.19 = 0.71
	opt.Step(gradOf(t, p, 1))
	assert.InDelta(t, 0.71, p.Tensor().At(0), 1e-12)
}

func TestSGD_SkipsParametersWithoutGradient(t *testing.T) {
	a, b := scalarParam(t, "a", 1), scalarParam(t, "b", 1)
	opt := optim.NewSGD([]*nn.Parameter{a, b}, optim.SGDConfig{LR: 0.5})

	opt.Step(gradOf(t, a, 1))
	assert.InDelta(t, 0.5, a.Tensor().At(0), 1e-12)
	assert.InDelta(t, 1.0, b.Tensor().At(0), 1e-12)
}

func TestSGD_NilMapUsesStoredGradients(t *testing.T) {
	p := scalarParam(t, "x", 3)
	p.SetGrad(tensor.Full(tensor.Shape{1}, 2, cpu.New()))
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.25})

	opt.Step(nil)
	assert.InDelta(t, 2.5, p.Tensor().At(0), 1e-12)

	opt.ZeroGrad()
	assert.Nil(t, p.Grad())
	opt.Step(nil)
	assert.InDelta(t, 2.5, p.Tensor().At(0), 1e-12)
}

func TestSGD_Defaults(t *testing.T) {
	opt := optim.NewSGD(nil, optim.SGDConfig{})
	assert.Equal(t, 0.01, opt.LR())
	opt.SetLR(0.2)
	assert.Equal(t, 0.2, opt.LR())

	cfg, err := config.New(config.WithLearningRate(0.05))
	require.NoError(t, err)
	assert.Equal(t, 0.05, optim.FromConfig(nil, cfg).LR())
}

func TestSGD_StateDict(t *testing.T) {
	p := scalarParam(t, "x", 1)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	assert.Empty(t, opt.StateDict())

	opt.Step(gradOf(t, p, 1))
	state := opt.StateDict()
	assert.Equal(t, []float64{1}, state["velocity.0"])

	// A fresh optimizer restored from the state continues the same trajectory.
	q := scalarParam(t, "x", p.Tensor().At(0))
	restored := optim.NewSGD([]*nn.Parameter{q}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	require.NoError(t, restored.LoadStateDict(state))
	opt.Step(gradOf(t, p, 1))
	restored.Step(gradOf(t, q, 1))
	assert.InDelta(t, p.Tensor().At(0), q.Tensor().At(0), 1e-12)

	err := restored.LoadStateDict(map[string][]float64{"velocity.0": {1, 2}})
	assert.Error(t, err)
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	// After bias correction the first step is lr * g / (|g| + eps).
	for _, g := range []float64{0.5, -3} {
		p := scalarParam(t, "x", 1)
		opt := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{LR: 0.1})
		opt.Step(gradOf(t, p, g))
		assert.InDelta(t, 1-0.1*math.Copysign(1, g), p.Tensor().At(0), 1e-6)
		assert.Equal(t, 1, opt.Timestep())
	}
}

func TestAdam_Defaults(t *testing.T) {
	opt := optim.NewAdam(nil, optim.AdamConfig{})
	assert.Equal(t, 0.001, opt.LR())
	opt.SetLR(0.01)
	assert.Equal(t, 0.01, opt.LR())
}

func TestAdam_MinimisesQuadratic(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x, err := tensor.FromSlice([]float64{3, -2}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	p := nn.NewParameter("x", x)
	opt := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{LR: 0.1})

	backend.Tape().StartRecording()
	for i := 0; i < 500; i++ {
		loss := p.Tensor().Mul(p.Tensor()).Sum()
		opt.Step(autodiff.Backward(loss, backend))
		backend.Tape().Clear()
	}
	for _, v := range p.Tensor().Data() {
		assert.InDelta(t, 0, v, 0.1)
	}
}

// A few SGD steps on one fixed batch lower the LSTM matcher's loss.
func TestSGD_TrainsMatcher(t *testing.T) {
	cfg, err := config.New(
		config.WithEmbeddingSize(4),
		config.WithHiddenSize(3),
		config.WithLearningRate(0.05),
	)
	require.NoError(t, err)

	backend := autodiff.New(cpu.New())
	m, err := matcher.New(matcher.KindLSTM, cfg, backend)
	require.NoError(t, err)
	opt := optim.FromConfig(m.Parameters(), cfg)

	rng := rand.New(rand.NewSource(3))
	seq1 := tensor.Randn(tensor.Shape{4, 3, 4}, rng, backend)
	seq2 := tensor.Randn(tensor.Shape{4, 2, 4}, rng, backend)
	labels := []int{0, 1, 1, 0}

	lossAt := func() float64 {
		scores, err := m.Forward(seq1, seq2)
		require.NoError(t, err)
		loss, err := nn.CrossEntropy(scores, labels)
		require.NoError(t, err)
		return loss.At(0)
	}

	backend.Tape().StartRecording()
	initial := lossAt()
	backend.Tape().Clear()

	for i := 0; i < 5; i++ {
		scores, err := m.Forward(seq1, seq2)
		require.NoError(t, err)
		loss, err := nn.CrossEntropy(scores, labels)
		require.NoError(t, err)
		opt.Step(autodiff.Backward(loss, backend))
		backend.Tape().Clear()
		opt.ZeroGrad()
	}

	assert.Less(t, lossAt(), initial)
}

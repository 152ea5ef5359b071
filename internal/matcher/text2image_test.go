package matcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/textmatch/internal/autodiff"
	"github.com/born-ml/textmatch/internal/backend/cpu"
	"github.com/born-ml/textmatch/internal/config"
	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/tensor"
)

// fixedProvider ignores its inputs and returns a preset image.
type fixedProvider struct {
	img   *tensor.Tensor
	err   error
	calls int
}

func (p *fixedProvider) ComputeSimilarity(seq1, _ *tensor.Tensor) (*tensor.Tensor, int, error) {
	p.calls++
	if p.err != nil {
		return nil, 0, p.err
	}
	return p.img, p.img.Shape()[0], nil
}

func newTestText2Image(t *testing.T, opts ...config.Option) (*Text2Image, tensor.Backend) {
	t.Helper()
	backend := cpu.New()
	m, err := NewText2Image(smallConfig(t, opts...), backend, nil, nil)
	require.NoError(t, err)
	return m, backend
}

func zeroConv2Biases(m *Text2Image) {
	for _, k := range m.conv2 {
		data := k.Bias().Tensor().Data()
		for i := range data {
			data[i] = 0
		}
	}
}

func TestText2Image_Forward(t *testing.T) {
	m, backend := newTestText2Image(t)
	out, err := m.Forward(randn(1, backend, 2, 5, 6), randn(2, backend, 2, 7, 6))
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{2, m.cfg.TargetSize}, out.Shape())
	for _, v := range out.Data() {
		assert.True(t, v > 0 && v < 1, "score %v", v)
	}
}

func TestText2Image_Geometry(t *testing.T) {
	tests := []struct {
		maxSeqLen, convTarget int
		side                  int
		ok                    bool
	}{
		{56, 18, 8, true},
		{20, 6, 2, true},
		{21, 6, 2, true}, // 19 / 3 floors to 6
		{20, 7, 0, false},
		{8, 2, 0, false}, // pools to 2, nothing left after conv2
		{4, 0, 0, false},
	}
	for _, tt := range tests {
		cfg := config.Default()
		cfg.MaxSeqLen, cfg.ConvTarget = tt.maxSeqLen, tt.convTarget
		side, err := text2ImageGeometry(cfg)
		if !tt.ok {
			assert.ErrorIs(t, err, config.ErrInvalidConfig, "%d/%d", tt.maxSeqLen, tt.convTarget)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.side, side)
	}
}

func TestText2Image_ChannelStageIsASum(t *testing.T) {
	for _, independent := range []bool{false, true} {
		m, backend := newTestText2Image(t, config.WithIndependentChannelKernels(independent))
		zeroConv2Biases(m)
		C, T := m.cfg.ConvChannel, m.cfg.ConvTarget
		x := randn(3, backend, 2, C, T, T)

		sum := m.channelSum(x)
		require.Equal(t, tensor.Shape{2, 1, T - 2, T - 2}, sum.Shape())

		// Σ_c conv_c(x_c) equals the sum of the stage applied to inputs that
		// keep only channel c.
		var bySum *tensor.Tensor
		for c := 0; c < C; c++ {
			mask := make([]float64, C)
			mask[c] = 1
			only := x.Mul(constant(mask, tensor.Shape{1, C, 1, 1}, backend))
			part := m.channelSum(only)
			if bySum == nil {
				bySum = part
			} else {
				bySum = bySum.Add(part)
			}
		}
		assert.InDeltaSlice(t, sum.Data(), bySum.Data(), 1e-12, "independent=%v", independent)
	}
}

func TestText2Image_ChannelStageOfZeroIsBiasSum(t *testing.T) {
	m, backend := newTestText2Image(t, config.WithIndependentChannelKernels(true))
	C, T := m.cfg.ConvChannel, m.cfg.ConvTarget

	want := 0.0
	for _, k := range m.conv2 {
		want += k.Bias().Tensor().At(0)
	}
	out := m.channelSum(tensor.Zeros(tensor.Shape{1, C, T, T}, backend))
	for _, v := range out.Data() {
		assert.InDelta(t, want, v, 1e-12)
	}
}

func TestText2Image_SharedKernel(t *testing.T) {
	m, backend := newTestText2Image(t)
	require.Len(t, m.conv2, 1)
	C, T := m.cfg.ConvChannel, m.cfg.ConvTarget

	// Every channel equal to channel 0.
	ch := randn(4, backend, 1, 1, T, T)
	same := make([]*tensor.Tensor, C)
	for c := range same {
		same[c] = ch
	}
	x := tensor.Cat(same, 1)

	outs := m.channelConvs(x)
	require.Len(t, outs, C)
	for c := 1; c < C; c++ {
		assert.Equal(t, outs[0].Data(), outs[c].Data(), "channel %d", c)
	}

	indep, _ := newTestText2Image(t, config.WithIndependentChannelKernels(true))
	require.Len(t, indep.conv2, C)
	outs = indep.channelConvs(x)
	assert.NotEqual(t, outs[0].Data(), outs[1].Data())
}

func TestText2Image_IndependentKernelsAddParameters(t *testing.T) {
	shared, _ := newTestText2Image(t)
	indep, _ := newTestText2Image(t, config.WithIndependentChannelKernels(true))

	perKernel := 3*3 + 1
	extra := (shared.cfg.ConvChannel - 1) * perKernel
	assert.Equal(t, nn.CountParameters(shared.Parameters())+extra, nn.CountParameters(indep.Parameters()))
}

func TestText2Image_ForwardImageShape(t *testing.T) {
	m, backend := newTestText2Image(t)
	L := m.cfg.MaxSeqLen

	_, err := m.ForwardImage(randn(1, backend, 2, 1, L-1, L))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = m.ForwardImage(randn(1, backend, 2, 2, L, L))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	out, err := m.ForwardImage(randn(1, backend, 3, 1, L, L))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, m.cfg.TargetSize}, out.Shape())
}

func TestText2Image_UsesProvider(t *testing.T) {
	cfg := smallConfig(t)
	backend := cpu.New()
	L := cfg.MaxSeqLen
	p := &fixedProvider{img: tensor.Ones(tensor.Shape{1, 1, L, L}, backend)}

	m, err := NewText2Image(cfg, backend, p, nil)
	require.NoError(t, err)
	seq := randn(1, backend, 1, 3, 6)

	out, err := m.Forward(seq, seq)
	require.NoError(t, err)
	want, err := m.ForwardImage(p.img)
	require.NoError(t, err)
	assert.Equal(t, want.Data(), out.Data())
	assert.Equal(t, 1, p.calls)

	p.err = errors.New("provider down")
	_, err = m.Forward(seq, seq)
	assert.EqualError(t, err, "provider down")
}

func TestText2Image_Gradients(t *testing.T) {
	for _, independent := range []bool{false, true} {
		backend := autodiff.New(cpu.New())
		cfg := smallConfig(t, config.WithIndependentChannelKernels(independent))
		m, err := NewText2Image(cfg, backend, nil, nil)
		require.NoError(t, err)
		backend.Tape().StartRecording()

		out, err := m.Forward(randn(5, backend, 2, 4, 6), randn(6, backend, 2, 5, 6))
		require.NoError(t, err)
		targets, err := tensor.FromSlice([]float64{1, 0, 0, 1}, tensor.Shape{2, 2}, backend)
		require.NoError(t, err)
		loss, err := nn.BinaryCrossEntropy(out, targets)
		require.NoError(t, err)

		params := m.Parameters()
		nn.AttachGrads(params, autodiff.Backward(loss, backend))
		for _, p := range params {
			require.NotNil(t, p.Grad(), "independent=%v %s", independent, p.Name())
		}
	}
}

func TestText2Image_DefaultConfig(t *testing.T) {
	cfg := config.Default()
	backend := cpu.New()
	m, err := NewText2Image(cfg, backend, nil, nil)
	require.NoError(t, err)

	out, err := m.Forward(randn(7, backend, 2, 10, cfg.EmbeddingSize), randn(8, backend, 2, 60, cfg.EmbeddingSize))
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{2, cfg.TargetSize}, out.Shape())
	assert.False(t, hasNaN(out))
}

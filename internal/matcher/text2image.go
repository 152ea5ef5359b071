package matcher

import (
	"fmt"
	"log"

	"github.com/born-ml/textmatch/internal/config"
	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/similarity"
	"github.com/born-ml/textmatch/internal/tensor"
)

// Text2Image classifies the token similarity matrix of a sentence pair as if
// it were a one-channel image.
//
//	[B, 1, L, L]
//	  conv 3x3 (1 -> C) + relu    [B, C, L-2, L-2]
//	  maxpool 3x3                 [B, C, T, T]        T = conv_target
//	  Σ_c conv 3x3 (channel c)    [B, 1, T-2, T-2]
//	  dropout, maxpool 2x2        [B, 1, (T-2)/2, (T-2)/2]
//	  tanh(fc1), sigmoid(fc2)     [B, target]
//
// By default the per-channel stage applies kernel 0 to every channel. With
// independent_channel_kernels each channel gets its own kernel.
type Text2Image struct {
	cfg      config.Config
	backend  tensor.Backend
	provider similarity.Provider

	conv1   *nn.Conv2D // 1 -> C
	pool1   *nn.MaxPool2D
	conv2   []*nn.Conv2D // 1 -> 1, one per channel or a single shared kernel
	dropout *nn.Dropout
	pool2   *nn.MaxPool2D
	fc1     *nn.Linear
	fc2     *nn.Linear
}

// NewText2Image creates a Text2Image matcher. It fails if max_sqe_len does
// not pool down to conv_target.
func NewText2Image(cfg config.Config, backend tensor.Backend, provider similarity.Provider, logger *log.Logger) (*Text2Image, error) {
	side, err := text2ImageGeometry(cfg)
	if err != nil {
		return nil, err
	}
	loggerOrDiscard(logger).Printf("Current model: %s", "Text2Image")
	if provider == nil {
		provider = similarity.NewMatrixProvider(cfg.MaxSeqLen, similarity.Cosine)
	}

	rng := newRNG(cfg)
	kernels := 1
	if cfg.IndependentChannelKernels {
		kernels = cfg.ConvChannel
	}
	conv2 := make([]*nn.Conv2D, kernels)
	conv1 := nn.NewConv2D(1, cfg.ConvChannel, 3, 3, 1, 0, true, rng, backend)
	for k := range conv2 {
		conv2[k] = nn.NewConv2D(1, 1, 3, 3, 1, 0, true, rng, backend)
	}

	return &Text2Image{
		cfg:      cfg,
		backend:  backend,
		provider: provider,
		conv1:    conv1,
		pool1:    nn.NewMaxPool2D(3, 3),
		conv2:    conv2,
		dropout:  nn.NewDropout(cfg.DropoutRate, rng),
		pool2:    nn.NewMaxPool2D(2, 2),
		fc1:      nn.NewLinear(side*side, 30, rng, backend),
		fc2:      nn.NewLinear(30, cfg.TargetSize, rng, backend),
	}, nil
}

// text2ImageGeometry checks the pooling chain and returns the side of the
// final feature map.
func text2ImageGeometry(cfg config.Config) (int, error) {
	conv1 := cfg.MaxSeqLen - 2
	if conv1 < 3 || conv1/3 != cfg.ConvTarget {
		return 0, fmt.Errorf("%w: max_sqe_len %d pools to %d, conv_target is %d",
			config.ErrInvalidConfig, cfg.MaxSeqLen, max(conv1, 0)/3, cfg.ConvTarget)
	}
	side := (cfg.ConvTarget - 2) / 2
	if side < 1 {
		return 0, fmt.Errorf("%w: conv_target %d too small for the second convolution and 2x2 pooling",
			config.ErrInvalidConfig, cfg.ConvTarget)
	}
	return side, nil
}

// Forward computes the similarity image of the pair with the configured
// provider and classifies it. Returns [B, target] sigmoid scores.
func (m *Text2Image) Forward(seq1, seq2 *tensor.Tensor) (*tensor.Tensor, error) {
	img, _, err := m.provider.ComputeSimilarity(seq1, seq2)
	if err != nil {
		return nil, err
	}
	return m.ForwardImage(img)
}

// ForwardImage classifies precomputed [B, 1, max_sqe_len, max_sqe_len]
// similarity images.
func (m *Text2Image) ForwardImage(img *tensor.Tensor) (out *tensor.Tensor, err error) {
	defer tensor.Recover(&err)
	img = bind(img, m.backend)
	s := img.Shape()
	L := m.cfg.MaxSeqLen
	if len(s) != 4 || s[1] != 1 || s[2] != L || s[3] != L {
		panic(tensor.NewShapeError("text2image", "expected [batch, 1, %d, %d] image, got %v", L, L, s))
	}

	x := m.conv1.Forward(img).ReLU()
	x = m.pool1.Forward(x)
	x = m.channelSum(x)
	x = m.dropout.Forward(x)
	x = m.pool2.Forward(x)
	fs := x.Shape()
	x = x.Reshape(s[0], fs[1]*fs[2]*fs[3])
	x = m.fc1.Forward(x).Tanh()
	return m.fc2.Forward(x).Sigmoid(), nil
}

// channelSum adds up the per-channel convolutions of a [B, C, T, T] map.
func (m *Text2Image) channelSum(x *tensor.Tensor) *tensor.Tensor {
	outs := m.channelConvs(x)
	sum := outs[0]
	for _, o := range outs[1:] {
		sum = sum.Add(o)
	}
	return sum
}

// channelConvs convolves each channel of a [B, C, T, T] map on its own and
// returns the C results, each [B, 1, T-2, T-2].
func (m *Text2Image) channelConvs(x *tensor.Tensor) []*tensor.Tensor {
	channels := x.Shape()[1]
	outs := make([]*tensor.Tensor, channels)
	for c := 0; c < channels; c++ {
		outs[c] = m.kernel(c).Forward(x.Narrow(1, c, 1))
	}
	return outs
}

func (m *Text2Image) kernel(c int) *nn.Conv2D {
	if len(m.conv2) == 1 {
		return m.conv2[0]
	}
	return m.conv2[c]
}

// Parameters returns the parameters of every layer in pipeline order.
func (m *Text2Image) Parameters() []*nn.Parameter {
	params := m.conv1.Parameters()
	for _, k := range m.conv2 {
		params = append(params, k.Parameters()...)
	}
	return append(params, nn.Collect(m.fc1, m.fc2)...)
}

// SetTraining toggles dropout.
func (m *Text2Image) SetTraining(training bool) {
	m.dropout.SetTraining(training)
}

// Name returns "Text2Image".
func (m *Text2Image) Name() string {
	return "Text2Image"
}

package matcher

import (
	"log"

	"github.com/born-ml/textmatch/internal/config"
	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/tensor"
)

// LSTM encodes each sentence with its own unidirectional LSTM and classifies
// the two final hidden states.
//
//	scores = softmax(dropout(dense3(dense2(dense1([h1_T, h2_T])))), over classes)
type LSTM struct {
	cfg     config.Config
	backend tensor.Backend
	enc1    *nn.LSTM
	enc2    *nn.LSTM
	dense   *nn.FeedForward // 2H -> 256 -> 50 -> target
	dropout *nn.Dropout
}

// NewLSTM creates an LSTM matcher.
func NewLSTM(cfg config.Config, backend tensor.Backend, logger *log.Logger) *LSTM {
	loggerOrDiscard(logger).Printf("Current model: %s", "LSTM")
	rng := newRNG(cfg)
	h := cfg.HiddenSize
	return &LSTM{
		cfg:     cfg,
		backend: backend,
		enc1:    nn.NewLSTM(cfg.EmbeddingSize, h, rng, backend),
		enc2:    nn.NewLSTM(cfg.EmbeddingSize, h, rng, backend),
		dense:   nn.NewFeedForward([]int{2 * h, 256, 50, cfg.TargetSize}, rng, backend),
		dropout: nn.NewDropout(cfg.DropoutRate, rng),
	}
}

// Forward takes [B, T1, emb] and [B, T2, emb] and returns [B, target]
// probabilities, each row summing to one.
func (m *LSTM) Forward(seq1, seq2 *tensor.Tensor) (out *tensor.Tensor, err error) {
	defer tensor.Recover(&err)
	seq1, seq2 = bind(seq1, m.backend), bind(seq2, m.backend)
	checkPair("lstm", seq1, seq2, m.cfg.EmbeddingSize)

	_, h1, _ := m.enc1.Run(seq1)
	_, h2, _ := m.enc2.Run(seq2)
	features := tensor.Cat([]*tensor.Tensor{h1, h2}, 1)

	logits := m.dropout.Forward(m.dense.Forward(features))
	return logits.Softmax(1), nil
}

// Parameters returns both encoders' and the classifier's parameters.
func (m *LSTM) Parameters() []*nn.Parameter {
	return nn.Collect(m.enc1, m.enc2, m.dense)
}

// SetTraining toggles dropout.
func (m *LSTM) SetTraining(training bool) {
	m.dropout.SetTraining(training)
}

// Name returns "LSTM".
func (m *LSTM) Name() string {
	return "LSTM"
}

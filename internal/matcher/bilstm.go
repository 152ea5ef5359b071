package matcher

import (
	"log"

	"github.com/born-ml/textmatch/internal/config"
	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/tensor"
)

// BiLSTM encodes each sentence with its own bidirectional LSTM and classifies
// the first and last time steps of both encodings.
//
//	features = [o1[:, 0], o1[:, -1], o2[:, 0], o2[:, -1]]   // [B, 8H]
//	scores   = sigmoid(dropout(dense3(dense2(dense1(features)))))
type BiLSTM struct {
	cfg     config.Config
	backend tensor.Backend
	enc1    *nn.BiLSTM
	enc2    *nn.BiLSTM
	dense   *nn.FeedForward // 8H -> 400 -> 100 -> target
	dropout *nn.Dropout
}

// NewBiLSTM creates a BiLSTM matcher.
func NewBiLSTM(cfg config.Config, backend tensor.Backend, logger *log.Logger) *BiLSTM {
	loggerOrDiscard(logger).Printf("Current model: %s", "Bi_LSTM")
	rng := newRNG(cfg)
	h := cfg.HiddenSize
	return &BiLSTM{
		cfg:     cfg,
		backend: backend,
		enc1:    nn.NewBiLSTM(cfg.EmbeddingSize, h, rng, backend),
		enc2:    nn.NewBiLSTM(cfg.EmbeddingSize, h, rng, backend),
		dense:   nn.NewFeedForward([]int{8 * h, 400, 100, cfg.TargetSize}, rng, backend),
		dropout: nn.NewDropout(cfg.DropoutRate, rng),
	}
}

// Forward takes [B, T1, emb] and [B, T2, emb] and returns [B, target]
// sigmoid scores, row b scoring pair b.
func (m *BiLSTM) Forward(seq1, seq2 *tensor.Tensor) (out *tensor.Tensor, err error) {
	defer tensor.Recover(&err)
	seq1, seq2 = bind(seq1, m.backend), bind(seq2, m.backend)
	checkPair("bilstm", seq1, seq2, m.cfg.EmbeddingSize)

	o1 := m.enc1.Forward(seq1)
	o2 := m.enc2.Forward(seq2)
	t1, t2 := o1.Shape()[1], o2.Shape()[1]

	features := tensor.Cat([]*tensor.Tensor{
		step(o1, 0), step(o1, t1-1),
		step(o2, 0), step(o2, t2-1),
	}, 1)

	logits := m.dropout.Forward(m.dense.Forward(features))
	return logits.Sigmoid(), nil
}

// Parameters returns both encoders' and the classifier's parameters.
func (m *BiLSTM) Parameters() []*nn.Parameter {
	return nn.Collect(m.enc1, m.enc2, m.dense)
}

// SetTraining toggles dropout.
func (m *BiLSTM) SetTraining(training bool) {
	m.dropout.SetTraining(training)
}

// Name returns "Bi_LSTM".
func (m *BiLSTM) Name() string {
	return "Bi_LSTM"
}

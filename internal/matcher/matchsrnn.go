package matcher

import (
	"fmt"
	"log"

	"github.com/born-ml/textmatch/internal/config"
	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/tensor"
)

// MatchSRNN scores a sentence pair with a spatial RNN over the grid of token
// pair interactions.
//
// Interaction, for every token pair (i, j):
//
//	s_ij = relu([a_i·T_k·b_jᵗ]_k + W_s·[a_i; b_j] + b_s)          // [d]
//
// Recurrence, in row-major order with zero vectors outside the grid:
//
//	q   = [h_{i-1,j}; h_{i,j-1}; h_{i-1,j-1}; s_ij]               // [3h+d]
//	r   = σ(W_r q + b_r)                                         // [3h]
//	z   = softmax over the 4 groups of (W_z q + b_z)             // [4, h]
//	h~  = tanh(W_h s_ij + b_h + U (r ⊙ [h_{i-1,j}; h_{i,j-1}; h_{i-1,j-1}]))
//	h_ij = z_2⊙h_{i,j-1} + z_3⊙h_{i-1,j} + z_4⊙h_{i-1,j-1} + z_1⊙h~
//
// Readout: softmax(W_o h_{len1-1,len2-1} + b_o).
type MatchSRNN struct {
	cfg       config.Config
	backend   tensor.Backend
	dimension int
	hidden    int

	bilinear    *nn.Bilinear // T: [d, emb, emb]
	interaction *nn.Linear   // 2*emb -> d
	qr          *nn.Linear   // 3h+d -> 3h
	qz          *nn.Linear   // 3h+d -> 4h
	u           *nn.Parameter
	hLinear     *nn.Linear // d -> h
	readout     *nn.Linear // h -> target

	order cellOrder
}

// NewMatchSRNN creates a Match-SRNN matcher with interaction width
// cfg.SRNNDimension and grid hidden width cfg.SRNNHiddenDim.
func NewMatchSRNN(cfg config.Config, backend tensor.Backend, logger *log.Logger) *MatchSRNN {
	loggerOrDiscard(logger).Printf("Current model: %s", "Match-SpatialRNN")
	rng := newRNG(cfg)
	d, h, emb := cfg.SRNNDimension, cfg.SRNNHiddenDim, cfg.EmbeddingSize
	return &MatchSRNN{
		cfg:         cfg,
		backend:     backend,
		dimension:   d,
		hidden:      h,
		bilinear:    nn.NewBilinear(emb, emb, d, rng, backend),
		interaction: nn.NewLinear(2*emb, d, rng, backend),
		qr:          nn.NewLinear(3*h+d, 3*h, rng, backend),
		qz:          nn.NewLinear(3*h+d, 4*h, rng, backend),
		u:           nn.NewParameter("srnn.U", nn.Randn(tensor.Shape{h, 3 * h}, rng, backend)),
		hLinear:     nn.NewLinear(d, h, rng, backend),
		readout:     nn.NewLinear(h, cfg.TargetSize, rng, backend),
		order:       rowMajor,
	}
}

// Forward scores one pair ([len1, emb], [len2, emb] -> [target]) or a batch
// of pairs ([B, len1, emb], [B, len2, emb] -> [B, target]). Each row of the
// result sums to one.
func (m *MatchSRNN) Forward(seq1, seq2 *tensor.Tensor) (out *tensor.Tensor, err error) {
	defer tensor.Recover(&err)
	seq1, seq2 = bind(seq1, m.backend), bind(seq2, m.backend)
	s1, s2 := seq1.Shape(), seq2.Shape()

	if len(s1) == 2 && len(s2) == 2 {
		return m.forwardPair(seq1, seq2)
	}

	batch := checkPair("matchsrnn", seq1, seq2, m.cfg.EmbeddingSize)
	if batch == 0 {
		return tensor.Zeros(tensor.Shape{0, m.cfg.TargetSize}, m.backend), nil
	}
	rows := make([]*tensor.Tensor, batch)
	for b := 0; b < batch; b++ {
		a := seq1.Narrow(0, b, 1).Reshape(s1[1], s1[2])
		c := seq2.Narrow(0, b, 1).Reshape(s2[1], s2[2])
		scores, err := m.forwardPair(a, c)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", b, err)
		}
		rows[b] = scores.Reshape(1, m.cfg.TargetSize)
	}
	return tensor.Cat(rows, 0), nil
}

func (m *MatchSRNN) forwardPair(seq1, seq2 *tensor.Tensor) (*tensor.Tensor, error) {
	g, err := m.run(seq1, seq2)
	if err != nil {
		return nil, err
	}
	last, err := g.last()
	if err != nil {
		return nil, err
	}
	return m.readout.Forward(last).Softmax(1).Reshape(m.cfg.TargetSize), nil
}

// run computes the interaction tensor and fills the grid.
func (m *MatchSRNN) run(seq1, seq2 *tensor.Tensor) (*grid, error) {
	emb := m.cfg.EmbeddingSize
	s1, s2 := seq1.Shape(), seq2.Shape()
	if len(s1) != 2 || len(s2) != 2 || s1[1] != emb || s2[1] != emb {
		panic(tensor.NewShapeError("matchsrnn", "expected [len, %d] sequences, got %v and %v", emb, s1, s2))
	}
	if s1[0] == 0 || s2[0] == 0 {
		return nil, fmt.Errorf("%w: lengths %d and %d", ErrEmptySequence, s1[0], s2[0])
	}

	s := m.interactions(seq1, seq2)
	return m.recur(s, s1[0], s2[0])
}

// interactions returns S with row i*len2+j holding s_ij, shape [len1*len2, d].
func (m *MatchSRNN) interactions(seq1, seq2 *tensor.Tensor) *tensor.Tensor {
	len1, len2 := seq1.Shape()[0], seq2.Shape()[0]
	bil := m.bilinear.Pairwise(seq1, seq2)

	// Row i*len2+j of left/right is a_i/b_j, so [left, right] holds every
	// concatenated pair without a per-pair loop.
	sel1 := make([]float64, len1*len2*len1)
	sel2 := make([]float64, len1*len2*len2)
	for i := 0; i < len1; i++ {
		for j := 0; j < len2; j++ {
			row := i*len2 + j
			sel1[row*len1+i] = 1
			sel2[row*len2+j] = 1
		}
	}
	e1 := constant(sel1, tensor.Shape{len1 * len2, len1}, seq1.Backend())
	e2 := constant(sel2, tensor.Shape{len1 * len2, len2}, seq1.Backend())
	pairs := tensor.Cat([]*tensor.Tensor{e1.MatMul(seq1), e2.MatMul(seq2)}, 1)

	return bil.Add(m.interaction.Forward(pairs)).ReLU()
}

// recur fills the grid in m.order.
func (m *MatchSRNN) recur(s *tensor.Tensor, rows, cols int) (*grid, error) {
	g := newGrid(rows, cols, m.hidden, s.Backend())
	err := m.order(rows, cols, func(i, j int) error {
		pred, err := g.predecessors(i, j)
		if err != nil {
			return err
		}
		h, gates := m.cell(s.Narrow(0, i*cols+j, 1), pred)
		g.set(i, j, h, gates)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// cell computes one hidden state from s_ij [1, d] and the three predecessor
// states [1, h]. It also returns the [4, h] gate weights, whose columns sum
// to one.
func (m *MatchSRNN) cell(sij *tensor.Tensor, pred [3]*tensor.Tensor) (h, gates *tensor.Tensor) {
	hid := m.hidden
	history := tensor.Cat(pred[:], 1) // [1, 3h]
	q := tensor.Cat([]*tensor.Tensor{history, sij}, 1)
	r := m.qr.Forward(q).Sigmoid()

	// Column c of the [4, h] view holds the four candidates for coordinate c.
	gates = m.qz.Forward(q).Reshape(4, hid).Softmax(0)

	// U (r ⊙ history) as a row vector: (r ⊙ history) @ Uᵀ
	recurrent := r.Mul(history).MatMul(m.u.Tensor().Transpose())
	candidate := m.hLinear.Forward(sij).Add(recurrent).Tanh()

	z1 := gates.Narrow(0, 0, 1)
	z2 := gates.Narrow(0, 1, 1)
	z3 := gates.Narrow(0, 2, 1)
	z4 := gates.Narrow(0, 3, 1)

	h = z2.Mul(pred[1]).
		Add(z3.Mul(pred[0])).
		Add(z4.Mul(pred[2])).
		Add(z1.Mul(candidate))
	return h, gates
}

// Parameters returns T, the interaction projection, the gate layers, U, the
// candidate projection and the readout.
func (m *MatchSRNN) Parameters() []*nn.Parameter {
	params := m.bilinear.Parameters()
	params = append(params, nn.Collect(m.interaction, m.qr, m.qz)...)
	params = append(params, m.u)
	return append(params, nn.Collect(m.hLinear, m.readout)...)
}

// SetTraining is a no-op: Match-SRNN has no dropout.
func (m *MatchSRNN) SetTraining(bool) {}

// Name returns "Match-SRNN".
func (m *MatchSRNN) Name() string {
	return "Match-SRNN"
}

// constant wraps fixed data (no parameter refers to it) as a tensor on backend.
func constant(data []float64, shape tensor.Shape, backend tensor.Backend) *tensor.Tensor {
	t, err := tensor.FromSlice(data, shape, backend)
	if err != nil {
		panic(err)
	}
	return t
}

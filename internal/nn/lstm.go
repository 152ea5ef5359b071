package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/textmatch/internal/tensor"
)

// LSTM is a single-layer, batch-first long short-term memory encoder.
//
// For every time step t:
//
//	gates = x_t @ W_ih.T + b_ih + h_{t-1} @ W_hh.T + b_hh   // [B, 4H]
//	i, f, g, o = split(gates)                              // PyTorch order
//	c_t = σ(f) ⊙ c_{t-1} + σ(i) ⊙ tanh(g)
//	h_t = σ(o) ⊙ tanh(c_t)
//
// Input shape:  [batch, seq_len, input_size]
// Output shape: [batch, seq_len, hidden_size]
//
// The initial hidden and cell states are zero.
type LSTM struct {
	inputSize  int
	hiddenSize int
	ih         *Linear // input-to-hidden, [4H, input_size]
	hh         *Linear // hidden-to-hidden, [4H, H]
}

// NewLSTM creates an LSTM with recurrent weights drawn from
// U(-1/sqrt(H), 1/sqrt(H)) and zero biases.
func NewLSTM(inputSize, hiddenSize int, rng *rand.Rand, backend tensor.Backend) *LSTM {
	if inputSize <= 0 || hiddenSize <= 0 {
		panic(fmt.Sprintf("lstm: invalid sizes input=%d, hidden=%d", inputSize, hiddenSize))
	}
	ih := NewLinear(inputSize, 4*hiddenSize, rng, backend)
	hh := NewLinear(hiddenSize, 4*hiddenSize, rng, backend)
	ih.weight = NewParameter("lstm.weight_ih", UniformHidden(hiddenSize, tensor.Shape{4 * hiddenSize, inputSize}, rng, backend))
	hh.weight = NewParameter("lstm.weight_hh", UniformHidden(hiddenSize, tensor.Shape{4 * hiddenSize, hiddenSize}, rng, backend))
	ih.bias.name = "lstm.bias_ih"
	hh.bias.name = "lstm.bias_hh"
	return &LSTM{inputSize: inputSize, hiddenSize: hiddenSize, ih: ih, hh: hh}
}

// Forward runs the recurrence over the whole sequence and returns every
// hidden state.
func (l *LSTM) Forward(input *tensor.Tensor) *tensor.Tensor {
	output, _, _ := l.Run(input)
	return output
}

// Run is Forward that also returns the final hidden and cell states, each
// [batch, hidden_size].
func (l *LSTM) Run(input *tensor.Tensor) (output, hidden, cell *tensor.Tensor) {
	shape := input.Shape()
	if len(shape) != 3 || shape[2] != l.inputSize {
		panic(tensor.NewShapeError("lstm", "expected input [batch, seq_len, %d], got %v", l.inputSize, shape))
	}
	batch, steps := shape[0], shape[1]
	if steps == 0 {
		panic(tensor.NewShapeError("lstm", "empty sequence"))
	}

	H := l.hiddenSize
	h := tensor.Zeros(tensor.Shape{batch, H}, input.Backend())
	c := tensor.Zeros(tensor.Shape{batch, H}, input.Backend())
	outputs := make([]*tensor.Tensor, steps)

	for t := 0; t < steps; t++ {
		x := input.Narrow(1, t, 1).Reshape(batch, l.inputSize)
		gates := l.ih.Forward(x).Add(l.hh.Forward(h))

		i := gates.Narrow(1, 0, H).Sigmoid()
		f := gates.Narrow(1, H, H).Sigmoid()
		g := gates.Narrow(1, 2*H, H).Tanh()
		o := gates.Narrow(1, 3*H, H).Sigmoid()

		c = f.Mul(c).Add(i.Mul(g))
		h = o.Mul(c.Tanh())
		outputs[t] = h.Reshape(batch, 1, H)
	}

	return tensor.Cat(outputs, 1), h, c
}

// Parameters returns the input-to-hidden and hidden-to-hidden weights and biases.
func (l *LSTM) Parameters() []*Parameter {
	return Collect(l.ih, l.hh)
}

// HiddenSize returns H.
func (l *LSTM) HiddenSize() int {
	return l.hiddenSize
}

// InputSize returns the size of each input vector.
func (l *LSTM) InputSize() int {
	return l.inputSize
}

// BiLSTM runs one LSTM left to right and another right to left over the same
// input and concatenates their outputs per time step.
//
// Input shape:  [batch, seq_len, input_size]
// Output shape: [batch, seq_len, 2*hidden_size]
//
// Output[:, t, :H] is the forward state after reading x_0..x_t and
// Output[:, t, H:] is the backward state after reading x_{T-1}..x_t.
type BiLSTM struct {
	forward  *LSTM
	backward *LSTM
}

// NewBiLSTM creates a bidirectional LSTM.
func NewBiLSTM(inputSize, hiddenSize int, rng *rand.Rand, backend tensor.Backend) *BiLSTM {
	return &BiLSTM{
		forward:  NewLSTM(inputSize, hiddenSize, rng, backend),
		backward: NewLSTM(inputSize, hiddenSize, rng, backend),
	}
}

// Forward runs both directions.
func (b *BiLSTM) Forward(input *tensor.Tensor) *tensor.Tensor {
	fwd := b.forward.Forward(input)
	bwd := reverseTime(b.backward.Forward(reverseTime(input)))
	return tensor.Cat([]*tensor.Tensor{fwd, bwd}, 2)
}

// Parameters returns the parameters of both directions.
func (b *BiLSTM) Parameters() []*Parameter {
	return Collect(b.forward, b.backward)
}

// HiddenSize returns H (the output width is 2H).
func (b *BiLSTM) HiddenSize() int {
	return b.forward.hiddenSize
}

// reverseTime flips a [batch, seq_len, ...] tensor along dim 1.
func reverseTime(x *tensor.Tensor) *tensor.Tensor {
	steps := x.Shape()[1]
	if steps == 1 {
		return x
	}
	parts := make([]*tensor.Tensor, steps)
	for t := 0; t < steps; t++ {
		parts[steps-1-t] = x.Narrow(1, t, 1)
	}
	return tensor.Cat(parts, 1)
}

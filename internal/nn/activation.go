package nn

import (
	"github.com/born-ml/textmatch/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation function.
//
// ReLU(x) = max(0, x)
//
// ReLU has no trainable parameters.
type ReLU struct{}

// NewReLU creates a new ReLU activation.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation element-wise.
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.ReLU()
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// Sigmoid is a sigmoid activation function.
//
// Sigmoid(x) = 1 / (1 + exp(-x))
//
// Output range: (0, 1)
type Sigmoid struct{}

// NewSigmoid creates a new Sigmoid activation.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies sigmoid activation element-wise.
func (s *Sigmoid) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Sigmoid()
}

// Parameters returns an empty slice (Sigmoid has no trainable parameters).
func (s *Sigmoid) Parameters() []*Parameter {
	return nil
}

// Tanh is a hyperbolic tangent activation function.
//
// Output range: (-1, 1)
type Tanh struct{}

// NewTanh creates a new Tanh activation.
func NewTanh() *Tanh {
	return &Tanh{}
}

// Forward applies tanh activation element-wise.
func (t *Tanh) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Tanh()
}

// Parameters returns an empty slice (Tanh has no trainable parameters).
func (t *Tanh) Parameters() []*Parameter {
	return nil
}

// Softmax normalizes along one dimension so that every slice sums to one.
//
// Softmax(x)_i = exp(x_i) / Σ_j exp(x_j)
type Softmax struct {
	dim int
}

// NewSoftmax creates a softmax over dim. Negative dims count from the end.
func NewSoftmax(dim int) *Softmax {
	return &Softmax{dim: dim}
}

// Forward applies softmax along the configured dimension.
func (s *Softmax) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Softmax(s.dim)
}

// Parameters returns an empty slice (Softmax has no trainable parameters).
func (s *Softmax) Parameters() []*Parameter {
	return nil
}

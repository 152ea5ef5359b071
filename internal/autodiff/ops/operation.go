// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - AddOp, SubOp, MulOp: element-wise arithmetic with broadcasting
//   - MatMulOp, TransposeOp: 2D linear algebra
//   - ReshapeOp, NarrowOp, CatOp: shape manipulation
//   - ScaleOp, ShiftOp: scalar arithmetic
//   - ExpOp, LogOp, ReLUOp, SigmoidOp, TanhOp, SoftmaxOp: element-wise math
//   - SumOp: total reduction
//   - Conv2DOp, MaxPool2DOp: convolutional layers
package ops

import "github.com/born-ml/textmatch/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// unaryOp holds the single input and the output shared by element-wise ops.
type unaryOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensor.
func (op *unaryOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *unaryOp) Output() *tensor.RawTensor {
	return op.output
}

// binaryOp holds the two inputs and the output of a binary op.
type binaryOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensors [a, b].
func (op *binaryOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the output tensor.
func (op *binaryOp) Output() *tensor.RawTensor {
	return op.output
}

// mapGrad builds an input gradient of the same shape as outputGrad where
// each element is outputGrad[i] * f(i).
func mapGrad(outputGrad *tensor.RawTensor, f func(i int) float64) *tensor.RawTensor {
	grad := tensor.MustRaw(outputGrad.Shape(), outputGrad.Device())
	gd := grad.Data()
	for i, g := range outputGrad.Data() {
		gd[i] = g * f(i)
	}
	return grad
}

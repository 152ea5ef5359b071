package ops

import "github.com/born-ml/textmatch/internal/tensor"

// ReshapeOp represents a reshape. The gradient is reshaped back to the
// input shape.
type ReshapeOp struct{ unaryOp }

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{unaryOp{input: input, output: output}}
}

// Backward reshapes outputGrad to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

// NarrowOp represents slicing [start, start+length) along dim.
//
// Backward scatters outputGrad into a zero tensor of the input shape.
type NarrowOp struct {
	unaryOp
	dim   int
	start int
}

// NewNarrowOp creates a new NarrowOp. dim must already be normalized.
func NewNarrowOp(input, output *tensor.RawTensor, dim, start int) *NarrowOp {
	return &NarrowOp{unaryOp: unaryOp{input: input, output: output}, dim: dim, start: start}
}

// Backward computes the input gradient for a narrow.
func (op *NarrowOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	inShape := op.input.Shape()
	grad := tensor.MustRaw(inShape, op.input.Device())

	outer, n, inner := inShape.SplitAt(op.dim)
	length := outputGrad.Shape()[op.dim]
	block := length * inner
	src := outputGrad.Data()
	dst := grad.Data()
	for o := 0; o < outer; o++ {
		dstOff := (o*n + op.start) * inner
		copy(dst[dstOff:dstOff+block], src[o*block:(o+1)*block])
	}
	return []*tensor.RawTensor{grad}
}

// CatOp represents a concatenation operation along a dimension.
//
// Backward:
//
//	Split gradOutput along dim at input boundaries and distribute to each input.
//	Each input receives the gradient slice corresponding to its contribution.
type CatOp struct {
	inputs []*tensor.RawTensor
	dim    int
	output *tensor.RawTensor
}

// NewCatOp creates a new cat operation. dim must already be normalized.
func NewCatOp(inputs []*tensor.RawTensor, dim int, output *tensor.RawTensor) *CatOp {
	return &CatOp{inputs: inputs, dim: dim, output: output}
}

// Inputs returns the input tensors.
func (op *CatOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the output tensor.
func (op *CatOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward narrows the output gradient back into per-input pieces.
func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, in := range op.inputs {
		size := in.Shape()[op.dim]
		grads[i] = backend.Narrow(outputGrad, op.dim, offset, size)
		offset += size
	}
	return grads
}

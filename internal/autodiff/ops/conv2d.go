package ops

import (
	"math"

	"github.com/born-ml/textmatch/internal/tensor"
)

// Conv2DOp records a 2D convolution operation for autodiff.
//
// Forward: output = Conv2D(input, kernel, stride, padding)
//
// Backward (gradients):
//   - d_input:  "transposed convolution" of d_output with kernel
//   - d_kernel: convolution of input with d_output
//
// References:
//   - "A guide to convolution arithmetic for deep learning" (Dumoulin & Visin, 2016)
type Conv2DOp struct {
	input   *tensor.RawTensor
	kernel  *tensor.RawTensor
	output  *tensor.RawTensor
	stride  int
	padding int
}

// NewConv2DOp creates a new Conv2D operation.
func NewConv2DOp(input, kernel, output *tensor.RawTensor, stride, padding int) *Conv2DOp {
	return &Conv2DOp{
		input:   input,
		kernel:  kernel,
		output:  output,
		stride:  stride,
		padding: padding,
	}
}

// Inputs returns the input tensors.
func (op *Conv2DOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input, op.kernel}
}

// Output returns the output tensor.
func (op *Conv2DOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward delegates both gradients to the backend kernels.
func (op *Conv2DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inputGrad := backend.Conv2DInputBackward(op.input, op.kernel, outputGrad, op.stride, op.padding)
	kernelGrad := backend.Conv2DKernelBackward(op.input, op.kernel, outputGrad, op.stride, op.padding)
	return []*tensor.RawTensor{inputGrad, kernelGrad}
}

// MaxPool2DOp records a max pooling operation.
//
// The flat input index of every window maximum is computed once at record
// time; backward routes each output gradient to that single position
// (the subgradient of max).
type MaxPool2DOp struct {
	unaryOp
	maxIndices []int
}

// NewMaxPool2DOp creates a new MaxPool2D operation.
func NewMaxPool2DOp(input, output *tensor.RawTensor, kernelSize, stride int) *MaxPool2DOp {
	return &MaxPool2DOp{
		unaryOp:    unaryOp{input: input, output: output},
		maxIndices: computeMaxIndices(input, output, kernelSize, stride),
	}
}

// computeMaxIndices finds, for every output element, the flat input index of
// the window maximum. Ties resolve to the first position in scan order.
func computeMaxIndices(input, output *tensor.RawTensor, kernelSize, stride int) []int {
	inShape := input.Shape()
	outShape := output.Shape()
	H, W := inShape[2], inShape[3]
	HOut, WOut := outShape[2], outShape[3]
	planes := inShape[0] * inShape[1]

	in := input.Data()
	indices := make([]int, output.NumElements())
	for p := 0; p < planes; p++ {
		for oh := 0; oh < HOut; oh++ {
			for ow := 0; ow < WOut; ow++ {
				best := -1
				maxVal := math.Inf(-1)
				for kh := 0; kh < kernelSize; kh++ {
					for kw := 0; kw < kernelSize; kw++ {
						idx := (p*H+oh*stride+kh)*W + ow*stride + kw
						if best < 0 || in[idx] > maxVal {
							best, maxVal = idx, in[idx]
						}
					}
				}
				indices[(p*HOut+oh)*WOut+ow] = best
			}
		}
	}
	return indices
}

// Backward scatters each output gradient to the position of its window maximum.
func (op *MaxPool2DOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := tensor.MustRaw(op.input.Shape(), op.input.Device())
	gd := grad.Data()
	for i, g := range outputGrad.Data() {
		gd[op.maxIndices[i]] += g
	}
	return []*tensor.RawTensor{grad}
}

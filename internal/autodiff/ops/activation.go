package ops

import (
	"github.com/born-ml/textmatch/internal/tensor"
)

// ReLUOp represents f(x) = max(0, x).
//
// Backward: d(ReLU(x))/dx = 1 if x > 0, else 0.
type ReLUOp struct{ unaryOp }

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{unaryOp{input: input, output: output}}
}

// Backward masks the gradient where the input was not positive.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	x := op.input.Data()
	return []*tensor.RawTensor{mapGrad(outputGrad, func(i int) float64 {
		if x[i] > 0 {
			return 1
		}
		return 0
	})}
}

// SigmoidOp represents σ(x) = 1 / (1 + e^-x).
//
// Backward: dσ/dx = σ(x) * (1 - σ(x)), computed from the cached output.
type SigmoidOp struct{ unaryOp }

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{unaryOp{input: input, output: output}}
}

// Backward computes the sigmoid gradient.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	y := op.output.Data()
	return []*tensor.RawTensor{mapGrad(outputGrad, func(i int) float64 {
		return y[i] * (1 - y[i])
	})}
}

// TanhOp represents tanh(x).
//
// Backward: d(tanh)/dx = 1 - tanh²(x).
type TanhOp struct{ unaryOp }

// NewTanhOp creates a new TanhOp.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{unaryOp{input: input, output: output}}
}

// Backward computes the tanh gradient.
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	y := op.output.Data()
	return []*tensor.RawTensor{mapGrad(outputGrad, func(i int) float64 {
		return 1 - y[i]*y[i]
	})}
}

// ExpOp represents e^x. Backward: d(e^x)/dx = e^x.
type ExpOp struct{ unaryOp }

// NewExpOp creates a new ExpOp.
func NewExpOp(input, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{unaryOp{input: input, output: output}}
}

// Backward computes the exp gradient.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	y := op.output.Data()
	return []*tensor.RawTensor{mapGrad(outputGrad, func(i int) float64 { return y[i] })}
}

// LogOp represents ln(x). Backward: d(ln x)/dx = 1/x.
type LogOp struct{ unaryOp }

// NewLogOp creates a new LogOp.
func NewLogOp(input, output *tensor.RawTensor) *LogOp {
	return &LogOp{unaryOp{input: input, output: output}}
}

// Backward computes the log gradient.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	x := op.input.Data()
	return []*tensor.RawTensor{mapGrad(outputGrad, func(i int) float64 { return 1 / x[i] })}
}

// SoftmaxOp represents the softmax operation along an arbitrary dimension.
//
// Backward:
//
//	The Jacobian of softmax is:
//	∂softmax_i/∂x_j = softmax_i * (δ_ij - softmax_j)
//
//	Chain rule gives, per slice along dim:
//	∂L/∂x_j = softmax_j * (∂L/∂softmax_j - Σ_i (∂L/∂softmax_i * softmax_i))
type SoftmaxOp struct {
	unaryOp
	dim int
}

// NewSoftmaxOp creates a new softmax operation. dim must already be normalized.
func NewSoftmaxOp(input, output *tensor.RawTensor, dim int) *SoftmaxOp {
	return &SoftmaxOp{unaryOp: unaryOp{input: input, output: output}, dim: dim}
}

// Backward computes the gradient with respect to input.
func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.input.Shape()
	outer, n, inner := shape.SplitAt(op.dim)

	inputGrad := tensor.MustRaw(shape, op.input.Device())
	y := op.output.Data()
	g := outputGrad.Data()
	dx := inputGrad.Data()

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*n*inner + in

			dot := 0.0
			for k := 0; k < n; k++ {
				idx := base + k*inner
				dot += g[idx] * y[idx]
			}
			for k := 0; k < n; k++ {
				idx := base + k*inner
				dx[idx] = y[idx] * (g[idx] - dot)
			}
		}
	}
	return []*tensor.RawTensor{inputGrad}
}

package cpu

import (
	"math"

	"github.com/born-ml/textmatch/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// Sigmoid applies 1 / (1 + e^-x) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, sigmoid)
}

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, math.Tanh)
}

// Exp computes e^x element-wise.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, math.Exp)
}

// Log computes the natural logarithm element-wise.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, math.Log)
}

// Softmax normalizes x along dim.
//
// For every slice along dim:
//
//	softmax(x)_i = exp(x_i - max(x)) / Σ_j exp(x_j - max(x))
//
// The max-shifting keeps exp from overflowing.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	d := shape.NormalizeDim(dim)
	if d < 0 {
		panic(tensor.NewShapeError("softmax", "dim %d out of range for shape %v", dim, shape))
	}
	outer, n, inner := shape.SplitAt(d)

	result := tensor.MustRaw(shape, cpu.device)
	src := x.Data()
	dst := result.Data()

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*n*inner + in

			maxVal := src[base]
			for k := 1; k < n; k++ {
				if v := src[base+k*inner]; v > maxVal {
					maxVal = v
				}
			}

			sumExp := 0.0
			for k := 0; k < n; k++ {
				idx := base + k*inner
				dst[idx] = math.Exp(src[idx] - maxVal)
				sumExp += dst[idx]
			}

			for k := 0; k < n; k++ {
				dst[base+k*inner] /= sumExp
			}
		}
	}
	return result
}

func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1.0 / (1.0 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1.0 + e)
}

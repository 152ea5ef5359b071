package cpu

import (
	"github.com/born-ml/textmatch/internal/parallel"
	"github.com/born-ml/textmatch/internal/tensor"
)

// convGeometry holds the dimensions of one Conv2D call.
type convGeometry struct {
	N, CIn, H, W    int
	COut, KH, KW    int
	HOut, WOut      int
	stride, padding int
}

// newConvGeometry validates input/kernel shapes and computes output dimensions.
func newConvGeometry(op string, input, kernel *tensor.RawTensor, stride, padding int) convGeometry {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(tensor.NewShapeError(op, "input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(tensor.NewShapeError(op, "kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if inputShape[1] != kernelShape[1] {
		panic(tensor.NewShapeError(op, "input channels %d != kernel channels %d", inputShape[1], kernelShape[1]))
	}
	if stride <= 0 || padding < 0 {
		panic(tensor.NewShapeError(op, "invalid stride %d / padding %d", stride, padding))
	}

	g := convGeometry{
		N: inputShape[0], CIn: inputShape[1], H: inputShape[2], W: inputShape[3],
		COut: kernelShape[0], KH: kernelShape[2], KW: kernelShape[3],
		stride: stride, padding: padding,
	}
	// out_h = (H + 2*padding - KH) / stride + 1
	g.HOut = (g.H+2*padding-g.KH)/stride + 1
	g.WOut = (g.W+2*padding-g.KW)/stride + 1
	if g.HOut <= 0 || g.WOut <= 0 {
		panic(tensor.NewShapeError(op, "invalid output dimensions: out_h=%d, out_w=%d (input %dx%d, kernel %dx%d)",
			g.HOut, g.WOut, g.H, g.W, g.KH, g.KW))
	}
	return g
}

// each visits every (input index, kernel index, output index) triple that
// contributes to the convolution, skipping padded positions.
func (g convGeometry) each(visit func(inIdx, kIdx, outIdx int)) {
	for n := 0; n < g.N; n++ {
		for co := 0; co < g.COut; co++ {
			g.eachAt(n, co, visit)
		}
	}
}

// eachAt is each restricted to sample n and output channel co.
func (g convGeometry) eachAt(n, co int, visit func(inIdx, kIdx, outIdx int)) {
	for oh := 0; oh < g.HOut; oh++ {
		for ow := 0; ow < g.WOut; ow++ {
			outIdx := ((n*g.COut+co)*g.HOut+oh)*g.WOut + ow
			hStart := oh*g.stride - g.padding
			wStart := ow*g.stride - g.padding
			for ci := 0; ci < g.CIn; ci++ {
				for kh := 0; kh < g.KH; kh++ {
					h := hStart + kh
					if h < 0 || h >= g.H {
						continue
					}
					for kw := 0; kw < g.KW; kw++ {
						w := wStart + kw
						if w < 0 || w >= g.W {
							continue
						}
						inIdx := ((n*g.CIn+ci)*g.H+h)*g.W + w
						kIdx := ((co*g.CIn+ci)*g.KH+kh)*g.KW + kw
						visit(inIdx, kIdx, outIdx)
					}
				}
			}
		}
	}
}

// planeCost is the multiply-add count of one (sample, output channel) plane.
func (g convGeometry) planeCost() int {
	return g.HOut * g.WOut * g.CIn * g.KH * g.KW
}

// Conv2D performs a direct 2D convolution (cross-correlation, as in PyTorch).
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
//	out[n,co,oh,ow] = Σ_{ci,kh,kw} in[n,ci,oh*s+kh-p,ow*s+kw-p] * k[co,ci,kh,kw]
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	g := newConvGeometry("conv2d", input, kernel, stride, padding)

	output := tensor.MustRaw(tensor.Shape{g.N, g.COut, g.HOut, g.WOut}, cpu.device)
	in, k, out := input.Data(), kernel.Data(), output.Data()
	// Output planes are disjoint, so (sample, channel) pairs run concurrently.
	parallel.ForBatch(g.N, g.COut, g.planeCost(), func(n, co int) {
		g.eachAt(n, co, func(inIdx, kIdx, outIdx int) {
			out[outIdx] += in[inIdx] * k[kIdx]
		})
	}, cpu.parallel)
	return output
}

// Conv2DInputBackward computes the gradient w.r.t. input (transposed convolution).
//
// For each input position, sums grad[n, c_out, h_out, w_out] * kernel[c_out, c_in, kh, kw]
// over all output positions that read it.
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	g := newConvGeometry("conv2d_input_backward", input, kernel, stride, padding)

	inputGrad := tensor.MustRaw(input.Shape(), cpu.device)
	k, gr, gin := kernel.Data(), grad.Data(), inputGrad.Data()
	// Every output channel reads the whole input sample, so only samples split.
	parallel.For(g.N, g.COut*g.planeCost(), func(n int) {
		for co := 0; co < g.COut; co++ {
			g.eachAt(n, co, func(inIdx, kIdx, outIdx int) {
				gin[inIdx] += gr[outIdx] * k[kIdx]
			})
		}
	}, cpu.parallel)
	return inputGrad
}

// Conv2DKernelBackward computes the gradient w.r.t. the kernel: the
// correlation of the input with the output gradient.
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	g := newConvGeometry("conv2d_kernel_backward", input, kernel, stride, padding)

	kernelGrad := tensor.MustRaw(kernel.Shape(), cpu.device)
	in, gr, gk := input.Data(), grad.Data(), kernelGrad.Data()
	g.each(func(inIdx, kIdx, outIdx int) {
		gk[kIdx] += gr[outIdx] * in[inIdx]
	})
	return kernelGrad
}

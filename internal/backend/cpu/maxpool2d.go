package cpu

import (
	"math"

	"github.com/born-ml/textmatch/internal/tensor"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height - kernelSize) / stride + 1
//	out_width = (width - kernelSize) / stride + 1
//
// Trailing rows/columns that do not fill a window are dropped (floor mode).
//
// Example (2x2 pool, stride=2):
//
//	Input: [[1,2,3,4],    Output: [[6,8],
//	        [5,6,7,8],             [14,16]]
//	        [9,10,11,12],
//	        [13,14,15,16]]
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	N, C, H, W, HOut, WOut := PoolGeometry(input.Shape(), kernelSize, stride)

	output := tensor.MustRaw(tensor.Shape{N, C, HOut, WOut}, cpu.device)
	in := input.Data()
	out := output.Data()

	for plane := 0; plane < N*C; plane++ {
		channel := in[plane*H*W : (plane+1)*H*W]
		for oh := 0; oh < HOut; oh++ {
			for ow := 0; ow < WOut; ow++ {
				maxVal := math.Inf(-1)
				for kh := 0; kh < kernelSize; kh++ {
					row := channel[(oh*stride+kh)*W:]
					for kw := 0; kw < kernelSize; kw++ {
						if v := row[ow*stride+kw]; v > maxVal {
							maxVal = v
						}
					}
				}
				out[(plane*HOut+oh)*WOut+ow] = maxVal
			}
		}
	}
	return output
}

// PoolGeometry validates a max-pool input shape and returns its dimensions
// together with the pooled output size.
func PoolGeometry(shape tensor.Shape, kernelSize, stride int) (N, C, H, W, HOut, WOut int) {
	if len(shape) != 4 {
		panic(tensor.NewShapeError("maxpool2d", "expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if kernelSize <= 0 || stride <= 0 {
		panic(tensor.NewShapeError("maxpool2d", "invalid kernel size %d / stride %d", kernelSize, stride))
	}
	N, C, H, W = shape[0], shape[1], shape[2], shape[3]
	if kernelSize > H || kernelSize > W {
		panic(tensor.NewShapeError("maxpool2d", "kernel size %d too large for input %dx%d", kernelSize, H, W))
	}
	HOut = (H-kernelSize)/stride + 1
	WOut = (W-kernelSize)/stride + 1
	return N, C, H, W, HOut, WOut
}

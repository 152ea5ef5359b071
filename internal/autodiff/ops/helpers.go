package ops

import (
	"github.com/born-ml/textmatch/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad.Clone()
	}

	result := tensor.MustRaw(targetShape, grad.Device())
	dst := result.Data()
	strides := tensor.BroadcastStrides(targetShape, gradShape)

	idx := make([]int, len(gradShape))
	for _, g := range grad.Data() {
		off := 0
		for d, v := range idx {
			off += v * strides[d]
		}
		dst[off] += g

		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < gradShape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return result
}

package nn

import (
	"fmt"

	"github.com/born-ml/textmatch/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer.
//
// Takes the maximum over non-overlapping (or overlapping when stride <
// kernel) windows of the last two dimensions. Windows that would run past
// the border are dropped (floor mode).
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_h, out_w]
//
//	out_h = (height - kernel_size) / stride + 1
//
// MaxPool2D has no trainable parameters.
type MaxPool2D struct {
	kernelSize int
	stride     int
}

// NewMaxPool2D creates a new max pooling layer.
// A stride of 0 means stride = kernelSize.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride == 0 {
		stride = kernelSize
	}
	if stride < 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	return &MaxPool2D{kernelSize: kernelSize, stride: stride}
}

// Forward applies max pooling.
func (m *MaxPool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.MaxPool2D(m.kernelSize, m.stride)
}

// Parameters returns nil (pooling has no trainable parameters).
func (m *MaxPool2D) Parameters() []*Parameter {
	return nil
}

// ComputeOutputSize returns the pooled size of one spatial dimension.
func (m *MaxPool2D) ComputeOutputSize(size int) int {
	return (size-m.kernelSize)/m.stride + 1
}

// String returns a string representation of the layer.
func (m *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(kernel_size=%d, stride=%d)", m.kernelSize, m.stride)
}

package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/textmatch/internal/tensor"
)

// FeedForward is a stack of Linear layers applied back to back.
//
// The matchers use three layers with no activation in between, so the stack
// is affine end to end; an activation is applied by the caller after the
// last layer.
//
// Example:
//
//	ff := nn.NewFeedForward([]int{1600, 400, 100, 2}, rng, backend)
//	logits := ff.Forward(features) // [B, 1600] -> [B, 2]
type FeedForward struct {
	layers []*Linear
}

// NewFeedForward creates len(sizes)-1 linear layers, sizes[i] -> sizes[i+1].
func NewFeedForward(sizes []int, rng *rand.Rand, backend tensor.Backend) *FeedForward {
	if len(sizes) < 2 {
		panic(fmt.Sprintf("feedforward: need at least two sizes, got %v", sizes))
	}
	layers := make([]*Linear, len(sizes)-1)
	for i := range layers {
		layers[i] = NewLinear(sizes[i], sizes[i+1], rng, backend)
	}
	return &FeedForward{layers: layers}
}

// Forward applies every layer in order.
func (f *FeedForward) Forward(input *tensor.Tensor) *tensor.Tensor {
	x := input
	for _, l := range f.layers {
		x = l.Forward(x)
	}
	return x
}

// Parameters returns the weights and biases of every layer in order.
func (f *FeedForward) Parameters() []*Parameter {
	var params []*Parameter
	for _, l := range f.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// Layers returns the underlying linear layers.
func (f *FeedForward) Layers() []*Linear {
	return f.layers
}

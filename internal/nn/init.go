package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/textmatch/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// This initialization helps maintain variance of activations across layers.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend tensor.Backend) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform(shape, -bound, bound, rng, backend)
}

// UniformHidden draws from U(-1/sqrt(hidden), 1/sqrt(hidden)), the
// initialization used for recurrent weights.
func UniformHidden(hidden int, shape tensor.Shape, rng *rand.Rand, backend tensor.Backend) *tensor.Tensor {
	bound := 1.0 / math.Sqrt(float64(hidden))
	return tensor.Uniform(shape, -bound, bound, rng, backend)
}

// Zeros creates a tensor filled with zeros.
//
// This is commonly used for bias initialization.
func Zeros(shape tensor.Shape, backend tensor.Backend) *tensor.Tensor {
	return tensor.Zeros(shape, backend)
}

// Randn creates a tensor with random values from standard normal distribution.
func Randn(shape tensor.Shape, rng *rand.Rand, backend tensor.Backend) *tensor.Tensor {
	return tensor.Randn(shape, rng, backend)
}

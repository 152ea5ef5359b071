package tensor

import (
	"math/rand"
)

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape, b Backend) (*Tensor, error) {
	raw, err := RawFromSlice(data, shape, b.Device())
	if err != nil {
		return nil, err
	}
	return New(raw, b), nil
}

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{2, 3}, backend)
func Zeros(shape Shape, b Backend) *Tensor {
	return New(MustRaw(shape, b.Device()), b)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, b Backend) *Tensor {
	return Full(shape, 1, b)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64, b Backend) *Tensor {
	raw := MustRaw(shape, b.Device())
	data := raw.Data()
	for i := range data {
		data[i] = value
	}
	return New(raw, b)
}

// Randn creates a tensor with values drawn from N(0, 1) using rng.
func Randn(shape Shape, rng *rand.Rand, b Backend) *Tensor {
	raw := MustRaw(shape, b.Device())
	data := raw.Data()
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return New(raw, b)
}

// Uniform creates a tensor with values drawn from U(low, high) using rng.
func Uniform(shape Shape, low, high float64, rng *rand.Rand, b Backend) *Tensor {
	raw := MustRaw(shape, b.Device())
	data := raw.Data()
	for i := range data {
		data[i] = low + (high-low)*rng.Float64()
	}
	return New(raw, b)
}

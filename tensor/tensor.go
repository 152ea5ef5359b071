// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/textmatch/internal/tensor"
)

// Tensor is a RawTensor bound to the Backend that executes its operations.
type Tensor = tensor.Tensor

// RawTensor is the low-level dense float64 buffer with its shape.
type RawTensor = tensor.RawTensor

// Backend is implemented by compute backends (backend/cpu) and decorators
// (autodiff).
type Backend = tensor.Backend

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// ShapeError describes a dimension mismatch detected by an operation.
type ShapeError = tensor.ShapeError

var (
	// ErrShapeMismatch is wrapped by every *ShapeError.
	ErrShapeMismatch = tensor.ErrShapeMismatch

	// ErrDeviceUnavailable is returned for a recognised device without a
	// backend in this build.
	ErrDeviceUnavailable = tensor.ErrDeviceUnavailable
)

// New binds raw to backend.
func New(raw *RawTensor, b Backend) *Tensor {
	return tensor.New(raw, b)
}

// FromSlice creates a tensor holding a copy of data.
func FromSlice(data []float64, shape Shape, b Backend) (*Tensor, error) {
	return tensor.FromSlice(data, shape, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, b Backend) *Tensor {
	return tensor.Zeros(shape, b)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, b Backend) *Tensor {
	return tensor.Ones(shape, b)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64, b Backend) *Tensor {
	return tensor.Full(shape, value, b)
}

// Randn creates a tensor of N(0, 1) draws from rng.
func Randn(shape Shape, rng *rand.Rand, b Backend) *Tensor {
	return tensor.Randn(shape, rng, b)
}

// Uniform creates a tensor of U(low, high) draws from rng.
func Uniform(shape Shape, low, high float64, rng *rand.Rand, b Backend) *Tensor {
	return tensor.Uniform(shape, low, high, rng, b)
}

// Cat concatenates tensors along dim on the backend of the first.
func Cat(tensors []*Tensor, dim int) *Tensor {
	return tensor.Cat(tensors, dim)
}

// NewShapeError creates a ShapeError for the given operation.
func NewShapeError(op, format string, args ...any) *ShapeError {
	return tensor.NewShapeError(op, format, args...)
}

// Recover turns a *ShapeError panic into *errp. Other panics propagate.
func Recover(errp *error) {
	// recover only works when called directly by the deferred function, so
	// the body cannot delegate to the internal helper.
	r := recover()
	if r == nil {
		return
	}
	if se, ok := r.(*ShapeError); ok {
		*errp = se
		return
	}
	panic(r)
}

// ParseDevice maps a device selector ("cpu", "gpu", "cuda", ...) to a Device.
func ParseDevice(s string) (Device, error) {
	return tensor.ParseDevice(s)
}

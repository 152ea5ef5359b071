package tensor

import (
	"errors"
	"fmt"
	"strings"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	WebGPU
)

// ErrDeviceUnavailable is returned when a device is recognised but has no
// backend in this build.
var ErrDeviceUnavailable = errors.New("tensor: device unavailable")

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// ParseDevice maps a device selector ("cpu", "webgpu", "gpu", "cuda", "auto")
// to a Device. GPU selectors resolve to WebGPU; "auto" and "" resolve to CPU.
func ParseDevice(s string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "cpu":
		return CPU, nil
	case "webgpu", "gpu", "cuda":
		return WebGPU, nil
	default:
		return CPU, fmt.Errorf("tensor: unknown device %q", s)
	}
}

// RawTensor is the low-level tensor representation: a dense row-major
// float64 buffer with its shape.
//
// Backends never modify a RawTensor they did not create; every operation
// allocates its output. Autodiff relies on this to key gradients by pointer.
type RawTensor struct {
	data   []float64
	shape  Shape
	stride []int
	device Device
}

// NewRaw creates a new zero-filled RawTensor with the given shape.
func NewRaw(shape Shape, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]float64, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		device: device,
	}, nil
}

// MustRaw is NewRaw that panics with a *ShapeError on an invalid shape.
// Backends use it to allocate outputs.
func MustRaw(shape Shape, device Device) *RawTensor {
	r, err := NewRaw(shape, device)
	if err != nil {
		panic(NewShapeError("alloc", "%v", err))
	}
	return r
}

// RawFromSlice creates a RawTensor that copies data.
func RawFromSlice(data []float64, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, NewShapeError("from_slice", "shape %v requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape, device)
	if err != nil {
		return nil, err
	}
	copy(r.data, data)
	return r, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// Device returns the tensor's device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return len(r.data)
}

// Data returns the underlying buffer (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (r *RawTensor) Data() []float64 {
	return r.data
}

// Clone creates a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]float64, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: r.shape.ComputeStrides(),
		device: r.device,
	}
}

// WithShape returns a copy of the tensor with a new shape of the same size.
func (r *RawTensor) WithShape(shape Shape) *RawTensor {
	if shape.NumElements() != len(r.data) {
		panic(NewShapeError("reshape", "cannot reshape %v (%d elements) to %v",
			r.shape, len(r.data), shape))
	}
	out := r.Clone()
	out.shape = shape.Clone()
	out.stride = shape.ComputeStrides()
	return out
}

// offset computes the flat index for the given indices, panicking on misuse.
func (r *RawTensor) offset(indices []int) int {
	if len(indices) != len(r.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(r.shape), len(indices)))
	}
	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, r.shape[i]))
		}
		off += idx * r.stride[i]
	}
	return off
}

// At returns the element at the given indices.
func (r *RawTensor) At(indices ...int) float64 {
	return r.data[r.offset(indices)]
}

// Set sets the element at the given indices.
func (r *RawTensor) Set(value float64, indices ...int) {
	r.data[r.offset(indices)] = value
}

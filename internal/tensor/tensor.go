// Package tensor provides the core tensor types and operations for the
// textmatch models.
package tensor

import "fmt"

// Tensor is a float64 tensor bound to a computation backend.
// All arithmetic goes through the backend, so wrapping the backend with
// autodiff records every operation performed on the tensor.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros(Shape{3, 4}, backend)
//	result := t.Add(t)
type Tensor struct {
	raw     *RawTensor
	backend Backend
}

// New creates a Tensor from a RawTensor and backend.
func New(raw *RawTensor, b Backend) *Tensor {
	return &Tensor{raw: raw, backend: b}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.raw.Shape()
}

// Device returns the tensor's compute device.
func (t *Tensor) Device() Device {
	return t.raw.Device()
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
// Used by backend implementations and autodiff for low-level access.
func (t *Tensor) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor) Backend() Backend {
	return t.backend
}

// Data returns a view of the tensor's data.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.raw.Data()
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) At(indices ...int) float64 {
	return t.raw.At(indices...)
}

// Set sets the element at the given indices.
func (t *Tensor) Set(value float64, indices ...int) {
	t.raw.Set(value, indices...)
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[float64]%v on %s", t.raw.Shape(), t.raw.Device())
}

// Clone creates a deep copy of the tensor. The copy is not connected to any
// recorded computation.
func (t *Tensor) Clone() *Tensor {
	return New(t.raw.Clone(), t.backend)
}

// Detach returns a copy of the tensor bound to another backend, typically the
// inner backend of an autodiff decorator, so that further operations are not
// recorded.
func (t *Tensor) Detach(b Backend) *Tensor {
	return New(t.raw.Clone(), b)
}

func (t *Tensor) wrap(raw *RawTensor) *Tensor {
	return New(raw, t.backend)
}

// Add performs element-wise addition with broadcasting.
func (t *Tensor) Add(other *Tensor) *Tensor {
	return t.wrap(t.backend.Add(t.raw, other.raw))
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	return t.wrap(t.backend.Sub(t.raw, other.raw))
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	return t.wrap(t.backend.Mul(t.raw, other.raw))
}

// MatMul performs matrix multiplication: [M, K] @ [K, N] -> [M, N].
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	return t.wrap(t.backend.MatMul(t.raw, other.raw))
}

// Transpose swaps the two axes of a 2D tensor.
func (t *Tensor) Transpose() *Tensor {
	return t.wrap(t.backend.Transpose(t.raw))
}

// Reshape returns a tensor with the same data and a new shape.
// One dimension may be -1 and is inferred.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape := make(Shape, len(dims))
	copy(shape, dims)
	infer := -1
	known := 1
	for i, d := range shape {
		if d == -1 {
			if infer >= 0 {
				panic(NewShapeError("reshape", "only one dimension can be inferred, got %v", dims))
			}
			infer = i
			continue
		}
		known *= d
	}
	if infer >= 0 {
		if known == 0 || t.NumElements()%known != 0 {
			panic(NewShapeError("reshape", "cannot infer dimension for %v from %d elements", dims, t.NumElements()))
		}
		shape[infer] = t.NumElements() / known
	}
	return t.wrap(t.backend.Reshape(t.raw, shape))
}

// Narrow returns the slice [start, start+length) along dim.
func (t *Tensor) Narrow(dim, start, length int) *Tensor {
	return t.wrap(t.backend.Narrow(t.raw, dim, start, length))
}

// MulScalar multiplies every element by s.
func (t *Tensor) MulScalar(s float64) *Tensor {
	return t.wrap(t.backend.MulScalar(t.raw, s))
}

// AddScalar adds s to every element.
func (t *Tensor) AddScalar(s float64) *Tensor {
	return t.wrap(t.backend.AddScalar(t.raw, s))
}

// Exp computes e^x element-wise.
func (t *Tensor) Exp() *Tensor {
	return t.wrap(t.backend.Exp(t.raw))
}

// Log computes the natural logarithm element-wise.
func (t *Tensor) Log() *Tensor {
	return t.wrap(t.backend.Log(t.raw))
}

// ReLU applies max(0, x) element-wise.
func (t *Tensor) ReLU() *Tensor {
	return t.wrap(t.backend.ReLU(t.raw))
}

// Sigmoid applies 1/(1+e^-x) element-wise.
func (t *Tensor) Sigmoid() *Tensor {
	return t.wrap(t.backend.Sigmoid(t.raw))
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor) Tanh() *Tensor {
	return t.wrap(t.backend.Tanh(t.raw))
}

// Softmax normalizes along dim so that every slice sums to one.
func (t *Tensor) Softmax(dim int) *Tensor {
	return t.wrap(t.backend.Softmax(t.raw, dim))
}

// Sum reduces every element to a single-element tensor of shape [1].
func (t *Tensor) Sum() *Tensor {
	return t.wrap(t.backend.Sum(t.raw))
}

// Conv2D convolves a [N, C_in, H, W] input with a [C_out, C_in, K_h, K_w] kernel.
func (t *Tensor) Conv2D(kernel *Tensor, stride, padding int) *Tensor {
	return t.wrap(t.backend.Conv2D(t.raw, kernel.raw, stride, padding))
}

// MaxPool2D applies max pooling over the last two dimensions of a 4D tensor.
func (t *Tensor) MaxPool2D(kernelSize, stride int) *Tensor {
	return t.wrap(t.backend.MaxPool2D(t.raw, kernelSize, stride))
}

// Cat concatenates tensors along dim. All tensors use the backend of the first.
func Cat(tensors []*Tensor, dim int) *Tensor {
	if len(tensors) == 0 {
		panic(NewShapeError("cat", "no tensors to concatenate"))
	}
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	return tensors[0].wrap(tensors[0].backend.Cat(raws, dim))
}
